//go:build bash && cgo

// Command bbdemo builds the demo builtins as a bash loadable builtin
// library:
//
//	go build -tags bash -buildmode=c-shared -o libbbdemo.so ./cmd/bbdemo
//	enable -f ./libbbdemo.so counter upcase varcounter
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../pkg/bash
*/
import "C"

import (
	"fmt"
	"os"

	"github.com/thoreinstein/bashbuiltins/internal/demo"
	_ "github.com/thoreinstein/bashbuiltins/pkg/bash"
	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
)

func init() {
	if err := demo.Register(builtin.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "bbdemo: %v\n", err)
	}
}

func main() {}
