package main

import (
	"fmt"
	"io"
	"sync"
)

// terminalView renders the download workflow as lines on a terminal.
type terminalView struct {
	mu         sync.Mutex
	w          io.Writer
	directLink string
}

func newTerminalView(w io.Writer) *terminalView {
	return &terminalView{w: w}
}

func (v *terminalView) MarkField(field string, valid bool) {
	if !valid {
		v.printf("campo inválido: %s\n", field)
	}
}

func (v *terminalView) Notify(notice string) {
	v.printf("%s\n", notice)
}

func (v *terminalView) SetLoading(visible bool) {
	if visible {
		v.printf("Gerando relatório, aguarde...\n")
	}
}

// ShowError prints the message and a direct link, falling back to the link of the
// current submission.
func (v *terminalView) ShowError(message, fallbackURL string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintf(v.w, "%s\n", message)
	link := fallbackURL
	if link == "" {
		link = v.directLink
	}
	if link != "" {
		fmt.Fprintf(v.w, "URL direta: %s\n", link)
	}
}

func (v *terminalView) HideError() {}

func (v *terminalView) SetDirectLink(rawURL string) {
	v.mu.Lock()
	v.directLink = rawURL
	v.mu.Unlock()
}

func (v *terminalView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, format, args...)
}
