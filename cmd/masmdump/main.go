// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program masmdump assembles a synthetic program with jumps of varying
// distance, finalizes it and prints the linked code.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"

	"gate.computer/masm"
	"gate.computer/masm/buffer"
	"gate.computer/masm/code"
	"gate.computer/masm/disasm"
	"gate.computer/masm/isa/armv7"
	"gate.computer/masm/isa/mips"
	"gate.computer/masm/link"
	"github.com/sirupsen/logrus"
)

type macroAssembler interface {
	masm.Assembler
	Label() code.Label
	Jump() link.Jump
	LinkJump(link.Jump, code.Label)
	Nop()
	Ret()
}

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	var (
		verbose  = false
		arch     = "armv7"
		inPlace  = false
		addr     = uint(0x10000)
		jumps    = 16
		distance = 256
		seed     = int64(1)
		maxSize  = 64 * 1024 * 1024
		dumpText = false
	)

	flag.BoolVar(&verbose, "v", verbose, "log relaxation decisions")
	flag.StringVar(&arch, "arch", arch, "target architecture: armv7 or mips")
	flag.BoolVar(&inPlace, "inplace", inPlace, "keep code in place instead of compacting")
	flag.UintVar(&addr, "addr", addr, "address of the linked code")
	flag.IntVar(&jumps, "jumps", jumps, "number of jumps")
	flag.IntVar(&distance, "distance", distance, "maximum size of code between jumps")
	flag.Int64Var(&seed, "seed", seed, "random seed")
	flag.IntVar(&maxSize, "maxsize", maxSize, "maximum program text size")
	flag.BoolVar(&dumpText, "dumptext", dumpText, "disassemble the code instead of printing hex")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var (
		buf = buffer.NewLimited(maxSize)
		m   macroAssembler
		a   disasm.Arch
	)

	switch arch {
	case "armv7":
		m = armv7.New(armv7.DefaultTarget(), buf)
		a = disasm.ARMv7

	case "mips":
		m = mips.New(mips.DefaultTarget(), buf)
		a = disasm.MIPS

	default:
		log.Fatalf("unknown architecture: %s", arch)
	}

	mode := link.Compact
	if inPlace {
		mode = link.InPlace
	}

	random := rand.New(rand.NewSource(seed))

	var (
		labels []code.Label
		js     []link.Jump
	)

	err := masm.Assemble(func() {
		for i := 0; i < jumps; i++ {
			labels = append(labels, m.Label())
			js = append(js, m.Jump())

			for end := m.Buf().Size() + int32(random.Intn(distance+1)); m.Buf().Size() < end; {
				m.Nop()
			}
		}
		labels = append(labels, m.Label())
		m.Ret()
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, j := range js {
		m.LinkJump(j, labels[random.Intn(len(labels))])
	}

	size := m.Buf().Size()

	prog, err := masm.Finalize(m, &masm.MemoryAllocator{Addr: uint32(addr), MaxSize: maxSize}, mode)
	if err != nil {
		log.Fatal(err)
	}

	counts := make(map[link.LinkType]int)
	for _, j := range js {
		counts[prog.Jump(j).LinkType()]++
	}

	var types []link.LinkType
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	log.Printf("%s: %d bytes assembled, %d bytes linked (%s) at %#x", arch, size, len(prog.Text), mode, prog.Addr)
	for _, t := range types {
		log.Printf("link type %d: %d jumps", t, counts[t])
	}

	if dumpText {
		names := make(map[uint32]string)
		for i, l := range labels {
			names[prog.Address(l)] = fmt.Sprintf("block_%d", i)
		}
		if err := disasm.Fprint(os.Stdout, a, prog.Text, prog.Addr, names); err != nil {
			log.Fatal(err)
		}
	} else {
		fmt.Print(hex.Dump(prog.Text))
	}
}
