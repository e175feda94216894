package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/connex/contact-manager/internal/client"
	"github.com/connex/contact-manager/internal/core/domain"
	"github.com/connex/contact-manager/internal/core/validation"
	"github.com/connex/contact-manager/internal/tui"
	"github.com/connex/contact-manager/internal/view/list"
	"github.com/connex/contact-manager/pkg/logger"
)

// ClientFlags are shared by the commands that talk to the API.
type ClientFlags struct {
	Config  string        `help:"Client config file (YAML)." default:"connex.yaml" type:"path"`
	BaseURL string        `help:"API base URL; overrides the config file." name:"base-url"`
	Timeout time.Duration `help:"Request timeout; overrides the config file."`
}

// resolve loads the config file and applies flag overrides.
func (f ClientFlags) resolve() (*client.Config, error) {
	cfg, err := client.LoadConfig(f.Config)
	if err != nil {
		return nil, err
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}
	return cfg, nil
}

func (f ClientFlags) newClient(cfg *client.Config) *client.Client {
	return client.New(cfg.BaseURL, client.WithTimeout(cfg.Timeout))
}

// TuiCmd opens the interactive contact manager.
type TuiCmd struct {
	ClientFlags `embed:""`
	PageSize    int    `help:"Rows per page (10, 25 or 100); overrides the config file."`
	LogFile     string `help:"File receiving client logs." default:"connex.log" type:"path"`
}

// Run executes the tui command.
func (c *TuiCmd) Run() error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("tui: requires a terminal (TTY)")
	}

	cfg, err := c.resolve()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if c.PageSize > 0 {
		cfg.PageSize = c.PageSize
	}

	logOut := io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("tui: opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logger.Init(logger.Options{Level: "info", Service: "connex-tui", Output: logOut})

	m := tui.NewModel(c.newClient(cfg), tui.Options{
		PageSize: cfg.PageSize,
		Timeout:  cfg.Timeout,
		Logger:   log,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// ListCmd prints one page of contacts using the same search, sort and
// pagination rules as the interactive table.
type ListCmd struct {
	ClientFlags `embed:""`
	Search      string `help:"Case-insensitive filter over all fields." short:"s"`
	Sort        string `help:"Sort column (firstName, lastName, email, phone, company, jobTitle)."`
	Desc        bool   `help:"Sort descending."`
	Page        int    `help:"Page number, starting at 1." default:"1"`
	PageSize    int    `help:"Rows per page (10, 25 or 100); overrides the config file."`
}

// Run executes the list command.
func (c *ListCmd) Run() error {
	if c.Sort != "" && !slices.Contains(domain.FieldNames, c.Sort) {
		return fmt.Errorf("list: unknown sort column %q", c.Sort)
	}

	cfg, err := c.resolve()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if c.PageSize > 0 {
		cfg.PageSize = c.PageSize
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	res, err := c.newClient(cfg).List(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	state, err := c.apply(list.New(cfg.PageSize), res.Contacts)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	_, err = io.WriteString(os.Stdout, renderList(state)+"\n")
	return err
}

func (c *ListCmd) apply(s list.State, contacts []*domain.Contact) (list.State, error) {
	s = list.Reduce(s, list.Loaded{Contacts: contacts})
	if c.Search != "" {
		s = list.Reduce(s, list.Search{Term: c.Search})
	}
	if c.Sort != "" {
		s = list.Reduce(s, list.ToggleSort{Column: c.Sort})
		if c.Desc {
			s = list.Reduce(s, list.ToggleSort{Column: c.Sort})
		}
	}
	if c.Page < 1 || c.Page > s.PageCount() {
		return s, fmt.Errorf("page %d out of range, have %d", c.Page, s.PageCount())
	}
	return list.Reduce(s, list.SetPage{N: c.Page - 1}), nil
}

func renderList(s list.State) string {
	headers := make([]string, len(domain.FieldNames))
	for i, name := range domain.FieldNames {
		headers[i] = validation.Label(name)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(slices.Insert(headers, 0, "ID")...)
	for _, c := range s.Visible() {
		row := []string{c.ID}
		for _, name := range domain.FieldNames {
			row = append(row, c.Get(name))
		}
		t.Row(row...)
	}

	footer := "page " + strconv.Itoa(s.Page+1) + " of " + strconv.Itoa(s.PageCount()) +
		", " + strconv.Itoa(len(s.Filtered())) + " contacts"
	return t.String() + "\n" + footer
}
