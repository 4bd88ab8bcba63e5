// Command elfsegments lists the loadable segments of an ELF executable in
// the shape the virtual-memory subsystem's loader would feed to
// AllocWithInitializer for each one: virtual address, writability, and the
// (file, offset, read_bytes) triple LoadFile consumes. The ELF loader
// itself is out of scope here; this tool only exposes the segment table a
// loader would read.
package main

import (
	"debug/elf"
	"fmt"
	"log"
	"os"
)

func usage(me string) {
	fmt.Printf("%s <filename>\n\nList the PT_LOAD segments of an ELF executable\n", me)
	os.Exit(1)
}

func main() {
	if len(os.Args) != 2 {
		usage(os.Args[0])
	}
	fn := os.Args[1]

	f, err := elf.Open(fn)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if f.Type != elf.ET_EXEC && f.Type != elf.ET_DYN {
		log.Fatal("not an executable or PIE elf")
	}
	if f.Machine != elf.EM_X86_64 {
		log.Fatal("not an x86-64 elf")
	}

	fmt.Printf("entry: 0x%x\n", f.Entry)
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		writable := prog.Flags&elf.PF_W != 0
		fmt.Printf("vaddr=0x%x offset=0x%x filesz=%d memsz=%d writable=%v\n",
			prog.Vaddr, prog.Off, prog.Filesz, prog.Memsz, writable)
	}
}
