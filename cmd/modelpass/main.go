package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/vocdoni/modelpass/attribution"
)

// Exit codes per failure kind, so scripts can branch on the outcome
// without parsing stderr.
const (
	exitOK               = 0
	exitUsage            = 1
	exitModelRead        = 2
	exitInputRead        = 3
	exitToolkitFailure   = 4
	exitProofInvalid     = 5
	exitIdentityMismatch = 6
	exitToolkitDrift     = 7
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(exitUsage)
	}

	command, args := os.Args[1], os.Args[2:]
	var code int
	switch command {
	case "create-passport":
		code = runCreatePassport(args)
	case "attribute-content":
		code = runAttributeContent(args)
	case "verify-attribution":
		code = runVerifyAttribution(args)
	case "serve":
		code = runServe(args)
	case "version", "--version":
		fmt.Printf("modelpass %s\n", Version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage(os.Stderr)
		code = exitUsage
	}
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "modelpass %s\n\n", Version)
	fmt.Fprintf(w, "Usage: modelpass <command> [flags]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  create-passport <model.onnx>            Generate a model passport\n")
	fmt.Fprintf(w, "  attribute-content <model.onnx> <input>  Generate an attribution certificate\n")
	fmt.Fprintf(w, "  verify-attribution                      Verify a certificate against a passport\n")
	fmt.Fprintf(w, "  serve                                   Run the registry and verification daemon\n")
	fmt.Fprintf(w, "  version                                 Print the build version\n")
	fmt.Fprintf(w, "\nRun 'modelpass <command> --help' for the flags of each command.\n")
	fmt.Fprintf(w, "\nEnvironment variables are also available with the same name as flags,\n")
	fmt.Fprintf(w, "  prefixed with MODELPASS and with dashes (-) and dots (.) replaced by\n")
	fmt.Fprintf(w, "  underscores (_). For example, MODELPASS_TOOLKIT_BIN or MODELPASS_API_PORT.\n")
}

// fail prints one line to stderr and maps the error to its exit code.
func fail(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	fmt.Fprintf(os.Stderr, "modelpass: %v\n", err)
	switch attribution.Classify(err) {
	case attribution.KindModelRead:
		return exitModelRead
	case attribution.KindInputRead:
		return exitInputRead
	case attribution.KindToolkitFailure:
		return exitToolkitFailure
	case attribution.KindProofInvalid:
		return exitProofInvalid
	case attribution.KindIdentityMismatch:
		return exitIdentityMismatch
	case attribution.KindToolkitDrift:
		return exitToolkitDrift
	default:
		return exitUsage
	}
}
