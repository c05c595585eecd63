package commands

import (
	"fmt"
	"io"

	"github.com/handsandhope/hope/internal/core/styles"
)

// printer writes human-readable status lines for CLI commands.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) line(icon, format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, icon+" "+fmt.Sprintf(format, args...))
}

func (p *printer) Successf(format string, args ...any) {
	p.line(styles.CommandHeaderStyle.Render(styles.IconSuccess), format, args...)
}

func (p *printer) Infof(format string, args ...any) {
	p.line(styles.KeyStyle.Render(styles.IconNotifyInfo), format, args...)
}

func (p *printer) Warnf(format string, args ...any) {
	p.line(styles.ToastStyle("warning").UnsetBorderStyle().UnsetPadding().Render(styles.IconWarning), format, args...)
}

func (p *printer) Errorf(format string, args ...any) {
	p.line(styles.ToastStyle("error").UnsetBorderStyle().UnsetPadding().Render(styles.IconError), format, args...)
}

func (p *printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// KV prints an aligned key/value pair.
func (p *printer) KV(key string, value any) {
	_, _ = fmt.Fprintf(p.w, "  %s %s\n",
		styles.KeyStyle.Render(fmt.Sprintf("%-22s", key+":")),
		styles.ValueStyle.Render(fmt.Sprint(value)),
	)
}
