// Generate random secret to sign access tokens (JWT_SECRET)
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const defaultSecretBytesLen = 32

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, args []string) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	length := fs.IntP("bytes", "b", defaultSecretBytesLen, "Secret length in bytes")
	encoding := fs.StringP("encoding", "e", "hex", "Output encoding (hex, base64)")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if *length < 16 {
		return fmt.Errorf("secret must be at least 16 bytes, got %d", *length)
	}

	b := make([]byte, *length)
	_, err = rand.Read(b)
	if err != nil {
		return err
	}

	switch *encoding {
	case "hex":
		_, err = fmt.Fprintln(out, hex.EncodeToString(b))
	case "base64":
		_, err = fmt.Fprintln(out, base64.RawURLEncoding.EncodeToString(b))
	default:
		return fmt.Errorf("unknown encoding %q", *encoding)
	}

	return err
}
