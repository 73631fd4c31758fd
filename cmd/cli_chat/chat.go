package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type resolver interface {
	Resolve(ctx context.Context, message, apiKey string) string
}

type inputLine struct {
	text string
	err  error
}

// readLines lee del input en su propia goroutine; termina en el primer error
// o cuando el contexto se cancela antes de poder entregar la línea.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		reader := bufio.NewReader(in)
		for {
			text, err := reader.ReadString('\n')
			select {
			case lines <- inputLine{text: text, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// runChat corre el loop de lectura hasta EOF, "exit"/"quit" o cancelación del contexto.
// Una lectura bloqueada no demora la cancelación.
func runChat(ctx context.Context, in io.Reader, out io.Writer, r resolver, apiKey string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)
	fmt.Fprintln(out, "---- MediSense symptom chat (type 'exit' to quit) ----")
	for {
		fmt.Fprint(out, "You > ")

		var line inputLine
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		if line.err != nil && !errors.Is(line.err, io.EOF) {
			return fmt.Errorf("read input: %w", line.err)
		}
		eof := errors.Is(line.err, io.EOF)

		text := strings.TrimSpace(line.text)
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			fmt.Fprintln(out, "Bye. Take care!")
			return nil
		}
		if text != "" {
			fmt.Fprintf(out, "\nMediSense > %s\n\n", r.Resolve(ctx, text, apiKey))
		}
		if eof {
			fmt.Fprintln(out)
			return nil
		}
	}
}
