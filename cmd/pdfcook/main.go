// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pdfcook is the CLI front end over the pdf engine and its
// internal/editor command language: positional arguments name an
// optional command batch, one or more input files, and an output file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pdf "github.com/ksharindam/pdfcook"
	"github.com/ksharindam/pdfcook/internal/editor"
	"github.com/ksharindam/pdfcook/internal/paper"
)

var (
	quiet      bool
	showFonts  bool
	showPapers bool
	repair     bool
)

func main() {
	root := &cobra.Command{
		Use:   "pdfcook [commands] infile... outfile",
		Short: "A prepress preparation tool for PDF files",
		Long: "pdfcook reads one or more PDF files, optionally runs a batch of\n" +
			"editing commands over their page lists, and writes a fresh PDF.\n\n" +
			"commands: a single quoted string '<cmd1> <cmd2> ... <cmd_n>'\n" +
			"command: name(arg_1, ... arg_name=arg_value){page_range1 page_range2 ...}\n" +
			"args eg. : <int> 12,  <real> 12.0,  <id> a4,  <str> \"Helvetica\"\n" +
			"           <measure> 612.0 (without unit, pt) or 8.5in (with unit mm,cm,in)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE:          runRoot,
	}
	root.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress warning and log messages")
	root.Flags().BoolVar(&showFonts, "fonts", false, "show available standard font names")
	root.Flags().BoolVarP(&showPapers, "papers", "p", false, "show available paper sizes")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error : %v\n", err)
		if ec, ok := err.(exitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}

// exitCoder lets a RunE error request a specific process exit status:
// open/save failures exit with 255 (-1), usage errors with 1.
type exitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) ExitCode() int { return e.code }

func runRoot(cmd *cobra.Command, args []string) error {
	if showFonts {
		printFontNames(cmd.OutOrStdout())
		os.Exit(1)
	}
	if showPapers {
		printPaperSizes(cmd.OutOrStdout())
		os.Exit(1)
	}

	var commands, infile, outfile string
	var infiles []string
	switch len(args) {
	case 0:
		cmd.Help()
		os.Exit(1)
	case 1:
		infile = args[0]
	case 2:
		infile, outfile = args[0], args[1]
		repair = true
	default:
		commands = args[0]
		infile = args[1]
		outfile = args[len(args)-1]
		infiles = args[2 : len(args)-1]
	}

	ctx := pdf.NewContext(quiet, repair)
	doc, err := openDocument(ctx, infile)
	if err != nil {
		return &exitError{code: 255, err: err}
	}
	defer doc.Close()

	for _, other := range infiles {
		o, err := openDocument(ctx, other)
		if err != nil {
			return &exitError{code: 255, err: err}
		}
		defer o.Close()
		if err := doc.Merge(o); err != nil {
			return &exitError{code: 255, err: err}
		}
	}

	if commands != "" {
		sess := editor.NewSession(ctx, cmd.OutOrStdout())
		if err := sess.Run(commands, doc); err != nil {
			return err
		}
	}

	if outfile != "" {
		f, err := os.Create(outfile)
		if err != nil {
			return &exitError{code: 255, err: err}
		}
		defer f.Close()
		if err := doc.Save(f); err != nil {
			return &exitError{code: 255, err: err}
		}
	}
	return nil
}

// openDocument opens filename and, if it is encrypted, prompts for a
// password on stdin and retries Decrypt. An empty-password document
// never reaches the prompt since Open already tried it.
func openDocument(ctx *pdf.Context, filename string) (*pdf.Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q", filename)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q", filename)
	}
	doc, err := pdf.Open(ctx, f, info.Size())
	if err != nil {
		return nil, err
	}
	if doc.NeedsPassword() {
		fmt.Print("Enter Password : ")
		reader := bufio.NewReader(os.Stdin)
		pwd, _ := reader.ReadString('\n')
		pwd = trimNewline(pwd)
		if !doc.Decrypt(pwd) {
			return nil, pdf.ErrWrongPassword
		}
	}
	return doc, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func printFontNames(w io.Writer) {
	fmt.Fprintln(w, "Standard font names :")
	for _, n := range pdf.StandardFontNames() {
		fmt.Fprintln(w, " ", n)
	}
}

func printPaperSizes(w io.Writer) {
	fmt.Fprintln(w, "Available paper sizes :")
	for _, n := range paper.Names() {
		fmt.Fprintln(w, " ", n)
	}
}
