// Copyright (c) 2026 PMR Atlas. All rights reserved.

// Command atlas-edit edits reference documents from the terminal.
//
// Every write goes through an edit session, the same way the web editor
// does it: a draft is opened for one section in one language, then saved in
// that language only or saved and fanned out to other languages after an
// explicit confirmation.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/carolinavmo/pmr-atlas/internal/client"
	"github.com/carolinavmo/pmr-atlas/internal/core/document"
	"github.com/carolinavmo/pmr-atlas/internal/core/language"
	"github.com/carolinavmo/pmr-atlas/internal/editor"
	"github.com/carolinavmo/pmr-atlas/internal/markup"
)

// Globals are shared by every command.
type Globals struct {
	Server  string        `help:"API base URL." env:"ATLAS_API_URL" default:"http://localhost:8080/api/v1"`
	Token   string        `help:"Bearer token." env:"ATLAS_TOKEN"`
	Lang    string        `short:"l" help:"Content language (en, pt, es)." default:"en"`
	Timeout time.Duration `help:"Deadline of each command." default:"2m"`
	Verbose bool          `short:"v" help:"Log API calls to stderr."`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Show              ShowCmd              `cmd:"" help:"Print a document in one language."`
	Render            RenderCmd            `cmd:"" help:"Print the HTML of one section."`
	Edit              EditCmd              `cmd:"" help:"Save a section in one language only."`
	Translate         TranslateCmd         `cmd:"" help:"Save a section and translate it into other languages."`
	TranslateDocument TranslateDocumentCmd `cmd:"" name:"translate-document" help:"Translate a whole document into a language that has no content yet."`
	History           HistoryCmd           `cmd:"" help:"List the edit history of a document."`
}

// IO carries the terminal streams so that commands can be driven in tests.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func (globals *Globals) language() (language.Code, error) {
	return language.Parse(globals.Lang)
}

func (globals *Globals) client(streams *IO) *client.Client {
	logger := slog.New(slog.DiscardHandler)
	if globals.Verbose {
		logger = slog.New(slog.NewTextHandler(streams.Err, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return client.New(globals.Server, client.WithToken(globals.Token), client.WithLogger(logger))
}

// session opens a loaded edit session on id.
func (globals *Globals) session(context context.Context, streams *IO, id string) (*editor.Controller, error) {
	lang, err := globals.language()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.DiscardHandler)
	if globals.Verbose {
		logger = slog.New(slog.NewTextHandler(streams.Err, nil))
	}

	controller := editor.NewController(globals.client(streams), id, lang, logger)
	if err := controller.Load(context); err != nil {
		return nil, err
	}
	return controller, nil
}

func (globals *Globals) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), globals.Timeout)
}

// # Commands

type ShowCmd struct {
	ID  string `arg:"" help:"Document id."`
	Raw bool   `help:"Print markup instead of plain text."`
}

func (cmd *ShowCmd) Run(globals *Globals, streams *IO) error {
	context, cancel := globals.context()
	defer cancel()

	controller, err := globals.session(context, streams, cmd.ID)
	if err != nil {
		return err
	}
	defer controller.Close()

	doc := controller.Document()
	lang := controller.Language()

	fmt.Fprintf(streams.Out, "%s  [%s, version %d]\n", doc.DisplayName(lang), lang, doc.Version)
	if doc.MissingLanguage(lang) {
		fmt.Fprintf(streams.Out, "(no %s content yet; showing %s)\n", language.Name(lang), language.Name(language.Base))
	}

	for _, id := range document.Sections() {
		value, err := doc.Content(id, lang)
		if err != nil {
			return err
		}
		if value.IsEmpty() {
			continue
		}

		heading := id.Label()
		if !lang.IsBase() && !doc.HasContent(id, lang) {
			heading += " (" + string(language.Base) + ")"
		}
		fmt.Fprintf(streams.Out, "\n## %s\n", heading)

		if value.Kind == document.KindReference {
			for i, entry := range value.Entries {
				fmt.Fprintf(streams.Out, "%d. %s\n", i+1, entry)
			}
			continue
		}
		if cmd.Raw {
			fmt.Fprintln(streams.Out, value.Text)
		} else {
			fmt.Fprintln(streams.Out, markup.PlainText(value.Text))
		}
	}
	return nil
}

type RenderCmd struct {
	ID      string `arg:"" help:"Document id."`
	Section string `arg:"" help:"Section id."`
}

func (cmd *RenderCmd) Run(globals *Globals, streams *IO) error {
	context, cancel := globals.context()
	defer cancel()

	lang, err := globals.language()
	if err != nil {
		return err
	}

	rendered, err := globals.client(streams).RenderSection(context, cmd.ID, document.SectionID(cmd.Section), lang)
	if err != nil {
		return err
	}
	fmt.Fprintln(streams.Out, rendered.HTML)
	return nil
}

// DraftSource reads the new section content from a file or stdin ("-").
type DraftSource struct {
	File string `short:"f" required:"" help:"File with the new content in markup, or - for stdin. References take one entry per line."`
}

func (source DraftSource) read(streams *IO) (string, error) {
	if source.File == "-" {
		raw, err := io.ReadAll(streams.In)
		return string(raw), err
	}
	raw, err := os.ReadFile(source.File)
	return string(raw), err
}

// openDraft starts an edit of section and replaces the draft with content.
func openDraft(controller *editor.Controller, section, content string) error {
	if err := controller.StartEdit(document.SectionID(section)); err != nil {
		return err
	}
	return controller.SetDraft(strings.TrimRight(content, "\n"))
}

type EditCmd struct {
	ID      string `arg:"" help:"Document id."`
	Section string `arg:"" help:"Section id."`
	DraftSource
}

func (cmd *EditCmd) Run(globals *Globals, streams *IO) error {
	content, err := cmd.read(streams)
	if err != nil {
		return err
	}

	context, cancel := globals.context()
	defer cancel()

	controller, err := globals.session(context, streams, cmd.ID)
	if err != nil {
		return err
	}
	defer controller.Close()

	if err := openDraft(controller, cmd.Section, content); err != nil {
		return err
	}
	if err := controller.Save(context); err != nil {
		return err
	}

	fmt.Fprintf(streams.Out, "saved %s [%s], version %d\n", cmd.Section, controller.Language(), controller.Document().Version)
	return nil
}

type TranslateCmd struct {
	ID      string   `arg:"" help:"Document id."`
	Section string   `arg:"" help:"Section id."`
	To      []string `help:"Target languages. Defaults to every other language."`
	Yes     bool     `short:"y" help:"Overwrite the targets without asking."`
	DraftSource
}

func (cmd *TranslateCmd) Run(globals *Globals, streams *IO) error {
	content, err := cmd.read(streams)
	if err != nil {
		return err
	}

	var targets []language.Code
	for _, raw := range cmd.To {
		target, err := language.Parse(raw)
		if err != nil {
			return fmt.Errorf("--to %q: %w", raw, err)
		}
		targets = append(targets, target)
	}

	context, cancel := globals.context()
	defer cancel()

	controller, err := globals.session(context, streams, cmd.ID)
	if err != nil {
		return err
	}
	defer controller.Close()

	if err := openDraft(controller, cmd.Section, content); err != nil {
		return err
	}
	if err := controller.RequestTranslation(targets...); err != nil {
		return err
	}

	confirming, _ := controller.State().(editor.ConfirmingTranslation)
	if !cmd.Yes && !confirm(streams, confirming.Targets) {
		if err := controller.CancelTranslation(); err != nil {
			return err
		}
		fmt.Fprintln(streams.Out, "cancelled; nothing was saved")
		return nil
	}

	outcomes, err := controller.ConfirmTranslation(context)
	if err != nil {
		return err
	}

	fmt.Fprintf(streams.Out, "saved %s [%s], version %d\n", cmd.Section, controller.Language(), controller.Document().Version)
	for _, outcome := range outcomes {
		if outcome.OK() {
			fmt.Fprintf(streams.Out, "  %s: translated\n", outcome.Language)
		} else {
			fmt.Fprintf(streams.Out, "  %s: failed: %v\n", outcome.Language, outcome.Err)
		}
	}

	var partial *editor.PartialTranslationError
	if errors.As(controller.LastError(), &partial) {
		return partial
	}
	return nil
}

// confirm asks before existing content in targets is overwritten.
func confirm(streams *IO, targets []language.Code) bool {
	names := make([]string, len(targets))
	for i, target := range targets {
		names[i] = language.Name(target)
	}
	fmt.Fprintf(streams.Out, "This overwrites the section in %s. Continue? [y/N] ", strings.Join(names, ", "))

	answer, _ := bufio.NewReader(streams.In).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

type TranslateDocumentCmd struct {
	ID string `arg:"" help:"Document id."`
}

func (cmd *TranslateDocumentCmd) Run(globals *Globals, streams *IO) error {
	context, cancel := globals.context()
	defer cancel()

	controller, err := globals.session(context, streams, cmd.ID)
	if err != nil {
		return err
	}
	defer controller.Close()

	lang := controller.Language()
	ran, err := controller.TranslateMissingLanguage(context)
	if err != nil {
		return err
	}
	if !ran {
		fmt.Fprintf(streams.Out, "%s already has %s content; nothing to do\n", cmd.ID, language.Name(lang))
		return nil
	}

	fmt.Fprintf(streams.Out, "translated into %s, version %d\n", language.Name(lang), controller.Document().Version)
	return nil
}

type HistoryCmd struct {
	ID    string `arg:"" help:"Document id."`
	Page  int    `default:"1" help:"Page number."`
	Limit int    `default:"20" help:"Entries per page."`
}

func (cmd *HistoryCmd) Run(globals *Globals, streams *IO) error {
	context, cancel := globals.context()
	defer cancel()

	versions, meta, err := globals.client(streams).ListVersions(context, cmd.ID, cmd.Page, cmd.Limit)
	if err != nil {
		return err
	}

	for _, version := range versions {
		fmt.Fprintf(streams.Out, "v%-4d %s  %-20s %-3s %s  %s\n",
			version.Version,
			version.CreatedAt.Format(time.RFC3339),
			version.EditType,
			version.Language,
			joinSections(version.Sections),
			version.EditedByName,
		)
	}
	fmt.Fprintf(streams.Out, "page %d of %d (%d entries)\n", meta.Page, meta.TotalPages, meta.Total)
	return nil
}

func joinSections(ids []document.SectionID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// # Entry Point

func newParser(cli *CLI, streams *IO) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("atlas-edit"),
		kong.Description("Edit PMR Atlas reference documents."),
		kong.UsageOnError(),
		kong.Writers(streams.Out, streams.Err),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Bind(streams),
	)
}

func run(args []string, streams *IO) error {
	var cli CLI
	parser, err := newParser(&cli, streams)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "atlas-edit: read .env:", err)
		os.Exit(1)
	}

	streams := &IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	if err := run(os.Args[1:], streams); err != nil {
		fmt.Fprintln(os.Stderr, "atlas-edit:", err)
		os.Exit(1)
	}
}
