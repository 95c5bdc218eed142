package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"frogc/bytecode"
	"frogc/compiler"
	"frogc/objfile"
)

// frogc_roundtrip compiles a source file, writes the module, reads it back
// and compares the two modules field by field.
func main() {
	srcPath := flag.String("src", "main.frog", "source file to compile")
	outPath := flag.String("out", "roundtrip.frogc", "output file for the written module")
	noOpt := flag.Bool("no-opt", false, "disable the optimizer")
	flag.Parse()

	fmt.Printf("Compiling %s...\n", *srcPath)
	res, err := compiler.CompileFile(*srcPath, compiler.Options{DisableOptimizer: *noOpt})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling: %v\n", err)
		os.Exit(1)
	}
	orig := res.Module
	fmt.Printf("Compiled: constants=%d, functions=%d, instructions=%d\n",
		len(orig.Constants), len(orig.Functions), len(orig.Code))

	fmt.Printf("Writing to %s...\n", *outPath)
	data, err := objfile.Marshal(orig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding module: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing module: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Write complete (%d bytes).\n", len(data))

	fmt.Printf("Reloading %s...\n", *outPath)
	f, err := os.Open(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening module: %v\n", err)
		os.Exit(1)
	}
	back, err := objfile.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reloading module: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Reloaded: constants=%d, functions=%d, instructions=%d\n",
		len(back.Constants), len(back.Functions), len(back.Code))

	errors := compare(orig, back)

	again, err := objfile.Marshal(back)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error re-encoding module: %v\n", err)
		os.Exit(1)
	}
	if !bytes.Equal(data, again) {
		fmt.Println("MISMATCH: re-encoded bytes differ")
		errors++
	}

	sum1, _ := objfile.Fingerprint(orig)
	sum2, _ := objfile.Fingerprint(back)
	fmt.Printf("Fingerprints: %s / %s\n", sum1, sum2)

	if errors > 0 {
		fmt.Printf("\nFAILED: %d mismatches\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nSUCCESS: Round-trip test passed!")
}

// compare prints every difference between two modules and counts them
func compare(a, b *bytecode.Module) int {
	errors := 0
	if len(a.Constants) != len(b.Constants) {
		fmt.Printf("MISMATCH: constants %d vs %d\n", len(a.Constants), len(b.Constants))
		errors++
	}
	if len(a.Functions) != len(b.Functions) {
		fmt.Printf("MISMATCH: functions %d vs %d\n", len(a.Functions), len(b.Functions))
		errors++
	}
	if len(a.Code) != len(b.Code) {
		fmt.Printf("MISMATCH: instructions %d vs %d\n", len(a.Code), len(b.Code))
		errors++
	}

	for i := 0; i < len(a.Constants) && i < len(b.Constants); i++ {
		if a.Constants[i].String() != b.Constants[i].String() {
			fmt.Printf("MISMATCH: constant %d %s vs %s\n", i, a.Constants[i], b.Constants[i])
			errors++
		}
	}
	for i := 0; i < len(a.Functions) && i < len(b.Functions); i++ {
		fa, fb := a.Functions[i], b.Functions[i]
		if fa.NameConst != fb.NameConst || fa.ParamCount != fb.ParamCount ||
			fa.LocalCount != fb.LocalCount || fa.Entry != fb.Entry || fa.Result != fb.Result {
			fmt.Printf("MISMATCH: function %d %+v vs %+v\n", i, fa, fb)
			errors++
		}
	}
	for i := 0; i < len(a.Code) && i < len(b.Code); i++ {
		if a.Code[i] != b.Code[i] {
			fmt.Printf("MISMATCH: instruction %d %s vs %s\n", i, a.Code[i], b.Code[i])
			errors++
		}
	}
	return errors
}
