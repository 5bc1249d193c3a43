// Command mdconvert converts between Markdown, notebook cells and Lexical
// editor state without running the server.
//
// Usage:
//
//	mdconvert notebook runbook.md [--out runbook.json]
//	mdconvert cells runbook.md
//	mdconvert render runbook.json [--out runbook.md]
//	mdconvert lexical state.json [--title "Runbook"]
//	mdconvert token --user <uuid>
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"notebook-markdown-be/internal/dto"
	"notebook-markdown-be/internal/pkg/serverutils"
	"notebook-markdown-be/pkg/lexical"
	"notebook-markdown-be/pkg/markdown"
	"notebook-markdown-be/pkg/notebook"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

var CLI struct {
	Notebook NotebookCmd `cmd:"" help:"Convert Markdown to a notebook (title and cells)"`
	Cells    CellsCmd    `cmd:"" help:"Convert Markdown to cells, keeping the first block"`
	Render   RenderCmd   `cmd:"" help:"Render a notebook or a cell array to Markdown"`
	Lexical  LexicalCmd  `cmd:"" help:"Convert Lexical editor state to a notebook"`
	Token    TokenCmd    `cmd:"" help:"Sign an API token for local testing"`
}

// Output is shared by every conversion command.
type Output struct {
	Out string `short:"o" help:"Write to this file instead of stdout" type:"path"`
}

func (o Output) write(data []byte) error {
	if o.Out == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(o.Out, data, 0o644); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(os.Stderr, "✅ Wrote %s (%d bytes)\n", o.Out, len(data))
	return nil
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// stderrDiagnostics prints conversion warnings instead of logging them.
type stderrDiagnostics struct{}

func (stderrDiagnostics) Warn(module, message string, details map[string]interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "[WARN] %s: %s\n", module, message)
}

type NotebookCmd struct {
	Path string `arg:"" help:"Markdown file, - for stdin"`
	Output
}

func (c *NotebookCmd) Run() error {
	md, err := readInput(c.Path)
	if err != nil {
		return err
	}
	data, err := encodeNotebook(markdown.MarkdownToNotebook(string(md), markdown.WithDiagnostics(stderrDiagnostics{})))
	if err != nil {
		return err
	}
	return c.write(data)
}

type CellsCmd struct {
	Path string `arg:"" help:"Markdown file, - for stdin"`
	Output
}

func (c *CellsCmd) Run() error {
	md, err := readInput(c.Path)
	if err != nil {
		return err
	}
	cells, err := notebook.MarshalCells(markdown.MarkdownToCells(string(md), markdown.WithDiagnostics(stderrDiagnostics{})))
	if err != nil {
		return err
	}
	return c.write(indent(cells))
}

type RenderCmd struct {
	Path  string `arg:"" help:"Notebook JSON or cell array, - for stdin"`
	Title string `help:"Title to render when the input is a bare cell array"`
	Output
}

func (c *RenderCmd) Run() error {
	data, err := readInput(c.Path)
	if err != nil {
		return err
	}

	req := dto.RenderMarkdownRequest{Title: c.Title, Cells: data}
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("invalid notebook: %w", err)
		}
	}
	cells, err := notebook.UnmarshalCells(req.Cells)
	if err != nil {
		return fmt.Errorf("invalid cells: %w", err)
	}

	md := markdown.NotebookToMarkdown(notebook.NewNotebook{Title: req.Title, Cells: cells}, markdown.WithDiagnostics(stderrDiagnostics{}))
	return c.write([]byte(md))
}

type LexicalCmd struct {
	Path  string `arg:"" help:"Lexical JSON file, - for stdin"`
	Title string `help:"Notebook title; a leading h1 is used when empty"`
	Output
}

func (c *LexicalCmd) Run() error {
	data, err := readInput(c.Path)
	if err != nil {
		return err
	}
	nb, err := lexical.NewParser(stderrDiagnostics{}).ParseNotebook(string(data), c.Title)
	if err != nil {
		return err
	}
	out, err := encodeNotebook(nb)
	if err != nil {
		return err
	}
	return c.write(out)
}

type TokenCmd struct {
	User   string `required:"" help:"User id to put in the token"`
	Secret string `required:"" env:"JWT_SECRET" help:"Signing secret"`
}

func (c *TokenCmd) Run() error {
	userId, err := uuid.Parse(c.User)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	token, err := serverutils.SignToken(c.Secret, userId, nil)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func encodeNotebook(nb notebook.NewNotebook) ([]byte, error) {
	cells, err := notebook.MarshalCells(nb.Cells)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(dto.NotebookPayloadResponse{
		Title:     nb.Title,
		Cells:     cells,
		TimeRange: nb.TimeRange,
	}, "", "  ")
}

func indent(raw json.RawMessage) []byte {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return raw
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return out
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("mdconvert"),
		kong.Description("Convert between Markdown and notebook cells"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	if err != nil {
		color.Red("❌ %v", err)
	}
	ctx.FatalIfErrorf(err)
}
