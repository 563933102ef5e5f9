// Package inspect renders a decoded batch body for terminal output.
package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"odata_batch/internal/batch"
	"odata_batch/internal/batch/batcherr"
	"odata_batch/internal/batch/boundary"
	"odata_batch/internal/http/stream"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var ErrNoDelimiter = errors.New("no boundary delimiter line found")

// DefaultContentType derives a multipart/mixed content type from the first
// delimiter line of data.
func DefaultContentType(data []byte) (string, error) {
	reader, err := stream.NewReader(bytes.NewReader(data), stream.DefaultBufferSize)
	if err != nil {
		return "", err
	}

	for {
		line, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return "", ErrNoDelimiter
		}
		if err != nil {
			return "", err
		}

		text := strings.TrimRight(boundary.RemoveEndingCRLF(line).Text, " \t")
		if !strings.HasPrefix(text, "--") {
			continue
		}
		if token := strings.TrimSuffix(text[2:], "--"); token != "" {
			return fmt.Sprintf("%s; boundary=%s", boundary.MultipartMixed, token), nil
		}
	}
}

type styles struct {
	title     lipgloss.Style
	changeset lipgloss.Style
	method    lipgloss.Style
	uri       lipgloss.Style
	header    lipgloss.Style
	meta      lipgloss.Style
	failure   lipgloss.Style
}

type Inspector struct {
	out    io.Writer
	styles styles
}

func New(out io.Writer, noColor bool) *Inspector {
	r := lipgloss.NewRenderer(out)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.TrueColor)
	}

	return &Inspector{
		out: out,
		styles: styles{
			title: r.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#7D56F4")),
			changeset: r.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#7D56F4")).
				Padding(0, 1),
			method: r.NewStyle().
				Foreground(lipgloss.Color("#04B575")).
				Bold(true),
			uri: r.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")),
			header: r.NewStyle().
				Foreground(lipgloss.Color("#888888")),
			meta: r.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Italic(true),
			failure: r.NewStyle().
				Foreground(lipgloss.Color("#FF5F87")).
				Bold(true),
		},
	}
}

// Run decodes body and writes either the decoded parts or the failure.
func (i *Inspector) Run(body io.Reader, contentType string, opts batch.Options) error {
	parts, err := batch.ParseRequest(contentType, body, opts)
	if err != nil {
		i.renderError(err)
		return err
	}
	_, err = io.WriteString(i.out, i.Render(parts))
	return err
}

func (i *Inspector) Render(parts []*batch.Part) string {
	var b strings.Builder
	b.WriteString(i.styles.title.Render(fmt.Sprintf("Batch with %d part(s)", len(parts))))
	b.WriteString("\n")

	for n, part := range parts {
		if part.IsChangeset() {
			label := i.styles.title.Render(fmt.Sprintf("changeset #%d (%d request(s))", n+1, len(part.Requests())))
			blocks := []string{label}
			for _, req := range part.Requests() {
				blocks = append(blocks, i.renderRequest(req))
			}
			b.WriteString(i.styles.changeset.Render(strings.Join(blocks, "\n")))
		} else {
			for _, req := range part.Requests() {
				b.WriteString(i.renderRequest(req))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (i *Inspector) renderRequest(req *batch.Request) string {
	var b strings.Builder
	b.WriteString(i.styles.method.Render(req.Method))
	b.WriteString(" ")
	b.WriteString(i.styles.uri.Render(req.RequestURI))

	for _, name := range req.Header.Names() {
		b.WriteString("\n")
		b.WriteString(i.styles.header.Render(fmt.Sprintf("  %s: %s", name, req.Header.Value(name))))
	}

	meta := fmt.Sprintf("  line %d, %d body byte(s)", req.Line, len(req.Body))
	if id := req.ContentID(); id != "" {
		meta += ", content-id " + id
	}
	b.WriteString("\n")
	b.WriteString(i.styles.meta.Render(meta))
	return b.String()
}

func (i *Inspector) renderError(err error) {
	var decodeErr *batcherr.Error
	var msg string
	if errors.As(err, &decodeErr) {
		msg = fmt.Sprintf("%s at line %d: %s", decodeErr.Reason, decodeErr.Line, decodeErr.Detail)
	} else {
		msg = err.Error()
	}
	_, _ = fmt.Fprintln(i.out, i.styles.failure.Render(msg))
}
