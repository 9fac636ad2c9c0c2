// Command mirage is a thin CLI over this module's setup/prove/verify entry
// points, driving the serialization layer the
// same way the pack's per-backend CLIs (e.g. groth16, plonk) are meant to be
// driven by a caller outside the library itself. It has exactly one demo
// circuit (productCircuit) since nothing in this module compiles a circuit
// description from a file; real callers are expected to link against the
// mirage package directly and supply their own CcCircuit.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	mirage "github.com/woopuiyung/mirage"
	"github.com/woopuiyung/mirage/internal/curve"
	"github.com/woopuiyung/mirage/internal/trace"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	var err error
	switch os.Args[1] {
	case "setup":
		err = runSetup(os.Args[2:])
	case "prove":
		err = runProve(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err := trace.ExportProfile("mirage.pprof"); err != nil {
		fmt.Fprintln(os.Stderr, "warning: exporting pprof profile:", err)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "mirage:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: mirage setup|prove|verify [flags]")
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	pkPath := fs.String("pk", "pk.bin", "output proving key path")
	vkPath := fs.String("vk", "vk.bin", "output verifying key path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	trapdoors, err := randomTrapdoors()
	if err != nil {
		return err
	}
	pk, vk, err := mirage.GenerateParameters(&productCircuit{}, trapdoors)
	if err != nil {
		return fmt.Errorf("generate parameters: %w", err)
	}
	if err := writeTo(*pkPath, pk); err != nil {
		return err
	}
	return writeTo(*vkPath, vk)
}

func runProve(args []string) error {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	pkPath := fs.String("pk", "pk.bin", "input proving key path")
	proofPath := fs.String("proof", "proof.bin", "output proof path")
	publicPath := fs.String("public", "public.bin", "output public input path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pk := &mirage.ProvingKey{}
	if err := readFrom(*pkPath, pk); err != nil {
		return err
	}

	circuit, err := randomProductCircuit()
	if err != nil {
		return err
	}

	var r, s fr.Element
	if _, err := r.SetRandom(); err != nil {
		return err
	}
	if _, err := s.SetRandom(); err != nil {
		return err
	}
	kappa3s := make([]fr.Element, circuit.NumAuxBlocks())
	for i := range kappa3s {
		if _, err := kappa3s[i].SetRandom(); err != nil {
			return err
		}
	}

	proof, _, err := mirage.CreateProof(circuit, pk, r, s, kappa3s)
	if err != nil {
		return fmt.Errorf("create proof: %w", err)
	}
	if err := writeTo(*proofPath, proof); err != nil {
		return err
	}

	var x fr.Element
	x.Mul(&circuit.a, &circuit.b)
	x.Mul(&x, &circuit.c)
	b := x.Bytes()
	return os.WriteFile(*publicPath, b[:], 0o644)
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	vkPath := fs.String("vk", "vk.bin", "input verifying key path")
	proofPath := fs.String("proof", "proof.bin", "input proof path")
	publicPath := fs.String("public", "public.bin", "input public input path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	vk := &mirage.VerifyingKey{}
	if err := readFrom(*vkPath, vk); err != nil {
		return err
	}
	proof := &mirage.Proof{}
	if err := readFrom(*proofPath, proof); err != nil {
		return err
	}
	raw, err := os.ReadFile(*publicPath)
	if err != nil {
		return err
	}
	var x fr.Element
	x.SetBytes(raw)

	pvk, err := mirage.PrepareVerifyingKey(vk)
	if err != nil {
		return fmt.Errorf("prepare verifying key: %w", err)
	}
	// Inputize (the circuit's only explicit AllocInput call) is the sole
	// entry in publicInputs; the coin and the constant are handled
	// internally by VerifyProof via vk.Schedule.
	if err := mirage.VerifyProof(pvk, proof, []fr.Element{x}); err != nil {
		return fmt.Errorf("verify proof: %w", err)
	}
	fmt.Println("ok")
	return nil
}

func randomTrapdoors() (mirage.Trapdoors, error) {
	var t mirage.Trapdoors
	var err error
	if t.Alpha, err = curve.RandomFr(rand.Reader); err != nil {
		return t, err
	}
	if t.Beta, err = curve.RandomFr(rand.Reader); err != nil {
		return t, err
	}
	if t.Gamma, err = curve.RandomFr(rand.Reader); err != nil {
		return t, err
	}
	if t.Tau, err = curve.RandomFr(rand.Reader); err != nil {
		return t, err
	}
	// productCircuit declares exactly one explicit aux block, so two deltas:
	// one for it, one for the implicit trailing block.
	t.Delta = make([]fr.Element, 2)
	for i := range t.Delta {
		if t.Delta[i], err = curve.RandomFr(rand.Reader); err != nil {
			return t, err
		}
	}
	return t, nil
}

func randomProductCircuit() (*productCircuit, error) {
	c := &productCircuit{}
	var err error
	if c.a, err = curve.RandomFr(rand.Reader); err != nil {
		return nil, err
	}
	if c.b, err = curve.RandomFr(rand.Reader); err != nil {
		return nil, err
	}
	if c.c, err = curve.RandomFr(rand.Reader); err != nil {
		return nil, err
	}
	return c, nil
}

func writeTo(path string, v io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = v.WriteTo(f)
	return err
}

func readFrom(path string, v io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = v.ReadFrom(f)
	return err
}
