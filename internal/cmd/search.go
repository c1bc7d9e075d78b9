package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/jimezsa/jobsweep/internal/boards"
	"github.com/jimezsa/jobsweep/internal/config"
	"github.com/jimezsa/jobsweep/internal/debugsink"
	"github.com/jimezsa/jobsweep/internal/export"
	"github.com/jimezsa/jobsweep/internal/models"
	"github.com/jimezsa/jobsweep/internal/network"
	"github.com/jimezsa/jobsweep/internal/scrape"
	"github.com/jimezsa/jobsweep/internal/search"
	"github.com/jimezsa/jobsweep/internal/seen"
)

type SearchCmd struct {
	Titles string `arg:"" optional:"" help:"Job titles (comma-separated). Optional when --query-file is provided."`
	Boards string `help:"Comma-separated list of boards (default: all configured)." default:"all"`
	SearchOptions
}

type BoardCmd struct {
	Titles string `arg:"" optional:"" help:"Job titles (comma-separated). Optional when --query-file is provided."`
	SearchOptions
	Board string `kong:"-"`
}

type SearchOptions struct {
	Locations         string  `help:"Comma-separated search locations." env:"JOBSWEEP_DEFAULT_LOCATIONS"`
	Country           string  `help:"Country for Indeed and Glassdoor domains." env:"JOBSWEEP_DEFAULT_COUNTRY"`
	Limit             int     `help:"Maximum results per board request." env:"JOBSWEEP_DEFAULT_LIMIT"`
	Hours             int     `help:"Keep postings from the last N hours."`
	WorkMode          string  `name:"work-mode" help:"Work mode filter: any, remote, on-site, hybrid." enum:"any,remote,on-site,hybrid" default:"any"`
	Employment        string  `name:"employment" help:"Employment type filter (full-time, contract, w2, parttime, internship)." default:""`
	MinExperience     int     `name:"min-experience" help:"Minimum years of experience (-1 disables)." default:"-1"`
	MaxExperience     int     `name:"max-experience" help:"Maximum years of experience (-1 disables)." default:"-1"`
	StrictTitles      bool    `name:"strict-titles" help:"Keep only postings whose title matches a requested title."`
	EasyApply         bool    `name:"easy-apply" help:"Easy-apply listings only (LinkedIn)."`
	FetchDescriptions bool    `name:"fetch-descriptions" help:"Fetch full descriptions (LinkedIn, slower)."`
	Sequential        bool    `help:"Run board requests one at a time with per-request pacing (--no-sequential trades that for fewer retries)." default:"true" negatable:""`
	Delay             float64 `help:"Base delay in seconds between board requests (-1 uses config)." default:"-1"`
	Debug             bool    `help:"Write per-run debug artifacts (requests, raw rows, stage counts)."`
	UserAgent         string  `name:"user-agent" help:"Override the request User-Agent header."`
	Proxies           string  `help:"Comma-separated proxy URLs." env:"JOBSWEEP_PROXIES"`
	CACert            string  `name:"ca-cert" help:"Path to a PEM CA bundle used to verify board TLS certificates." env:"JOBSWEEP_CA_CERT"`
	QueryFile         string  `help:"Path to JSON file with titles (top-level string array or object with job_titles array)."`
	Format            string  `help:"Output format: csv, json, md, tsv." enum:",csv,json,md,tsv" default:""`
	Links             string  `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output            string  `name:"output" short:"o" help:"Write output to a file."`
	Out               string  `name:"out" help:"Alias for --output."`
	File              string  `name:"file" help:"Alias for --output."`
	Seen              string  `help:"Path to seen postings JSON file."`
	NewOnly           bool    `help:"Output only unseen postings (requires --seen)."`
	NewOut            string  `help:"Write unseen postings JSON to a file (requires --seen)."`
	SeenUpdate        bool    `help:"Merge newly discovered unseen postings into --seen after the search completes."`
}

const maxTitles = 10

const rotatorBanDuration = 10 * time.Minute

func (s *SearchCmd) Run(ctx *Context) error {
	return runSearch(ctx, s.Titles, s.Boards, s.SearchOptions)
}

func (s *BoardCmd) Run(ctx *Context) error {
	return runSearch(ctx, s.Titles, s.Board, s.SearchOptions)
}

func runSearch(ctx *Context, titlesArg string, boardsArg string, opts SearchOptions) error {
	cfg := ctx.Config

	seenPath := firstNonEmpty(opts.Seen, cfg.SeenFile)
	if opts.NewOnly && strings.TrimSpace(seenPath) == "" {
		return fmt.Errorf("--new-only requires --seen")
	}
	if strings.TrimSpace(opts.NewOut) != "" && strings.TrimSpace(seenPath) == "" {
		return fmt.Errorf("--new-out requires --seen")
	}
	if opts.SeenUpdate && strings.TrimSpace(seenPath) == "" {
		return fmt.Errorf("--seen-update requires --seen")
	}

	titles, err := resolveTitles(titlesArg, opts.QueryFile, cfg.DefaultTitles)
	if err != nil {
		return err
	}

	locations := config.SplitCSV(opts.Locations)
	if len(locations) == 0 {
		locations = cfg.DefaultLocations
	}
	if len(locations) == 0 {
		return fmt.Errorf("at least one location is required (--locations or default_locations in config)")
	}

	boardNames, err := resolveBoards(boardsArg, cfg.DefaultBoards)
	if err != nil {
		return err
	}

	proxies, err := config.LoadProxies(opts.Proxies)
	if err != nil {
		return err
	}

	delay := opts.Delay
	if delay < 0 {
		delay = cfg.PerSiteDelay
	}

	caCert := strings.TrimSpace(opts.CACert)
	if caCert != "" {
		if _, err := os.Stat(caCert); err != nil {
			ctx.Logger.Warn().Str("ca_cert", caCert).Msg("CA bundle not found, ignoring")
			caCert = ""
		}
	}

	query := models.Query{
		Titles:            titles,
		Locations:         locations,
		Boards:            boardNames,
		HoursOld:          positiveInt(opts.Hours),
		WorkMode:          workModeFromFlag(opts.WorkMode),
		EmploymentType:    opts.Employment,
		MinExperience:     nonNegativeInt(opts.MinExperience),
		MaxExperience:     nonNegativeInt(opts.MaxExperience),
		StrictTitles:      opts.StrictTitles,
		ResultsWanted:     defaultInt(opts.Limit, cfg.DefaultLimit),
		Country:           firstNonEmpty(opts.Country, cfg.DefaultCountry),
		Proxies:           proxies,
		UserAgent:         opts.UserAgent,
		CACert:            caCert,
		EasyApply:         opts.EasyApply,
		FetchDescriptions: opts.FetchDescriptions,
		Sequential:        opts.Sequential,
		PerSiteDelay:      delay,
		Debug:             opts.Debug,
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, rotatorBanDuration)
		if err != nil {
			return err
		}
	}

	provider, err := boards.New(rotator, opts.UserAgent, caCert, ctx.Logger)
	if err != nil {
		return err
	}
	client := scrape.NewClient(provider, rotator, ctx.Logger)
	sink := debugsink.New(opts.Debug, cfg.DebugDir, ctx.Logger)
	service := search.New(client, sink, ctx.Logger)

	stopIndicator := startSearchIndicator(ctx)

	postings, err := service.Run(context.Background(), query)
	if stopIndicator != nil {
		stopIndicator()
	}
	if err != nil {
		return err
	}

	if sink.Enabled() && ctx.UI != nil {
		ctx.UI.Infof("Debug artifacts: %s", sink.Dir())
	}

	var unseen []models.Posting
	if strings.TrimSpace(seenPath) != "" {
		seenPostings, err := seen.ReadPostingsAllowMissing(seenPath)
		if err != nil {
			return fmt.Errorf("read --seen: %w", err)
		}
		unseen, _ = seen.Diff(postings, seenPostings)
	}

	output := postings
	if opts.NewOnly {
		output = unseen
	}

	outputPath := resolveOutputPath(opts)
	if strings.TrimSpace(opts.NewOut) != "" && pathsEqual(outputPath, opts.NewOut) {
		return fmt.Errorf("--new-out path must differ from --output")
	}
	if strings.TrimSpace(seenPath) != "" && pathsEqual(outputPath, seenPath) {
		return fmt.Errorf("--output path must differ from --seen")
	}
	if strings.TrimSpace(opts.NewOut) != "" && pathsEqual(opts.NewOut, seenPath) {
		return fmt.Errorf("--new-out path must differ from --seen")
	}

	if strings.TrimSpace(opts.NewOut) != "" {
		if err := seen.WritePostings(opts.NewOut, unseen); err != nil {
			return fmt.Errorf("write --new-out: %w", err)
		}
	}

	format, err := resolveFormat(ctx, opts, outputPath)
	if err != nil {
		return err
	}

	writer := ctx.Out
	var file *os.File
	if outputPath != "" {
		file, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		writer = file
	}

	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	hyperlinks := colorEnabled && isTTY(writer)
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	if err := export.WritePostings(writer, output, format, export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   hyperlinks,
		LinkStyle:    linkStyle,
	}); err != nil {
		return err
	}

	if opts.SeenUpdate && strings.TrimSpace(seenPath) != "" {
		if err := updateSeenHistory(seenPath, unseen); err != nil {
			return err
		}
	}

	summary := postings
	if strings.TrimSpace(seenPath) != "" {
		summary = unseen
	}
	printSearchSummary(ctx, summary)

	return nil
}

func positiveInt(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}

func nonNegativeInt(value int) *int {
	if value < 0 {
		return nil
	}
	return &value
}

func workModeFromFlag(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "remote":
		return models.WorkModeRemote
	case "on-site", "onsite":
		return models.WorkModeOnSite
	case "hybrid":
		return models.WorkModeHybrid
	default:
		return models.WorkModeAny
	}
}

func pathsEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil {
		return absA == absB
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func updateSeenHistory(seenPath string, input []models.Posting) error {
	seenPostings, err := seen.ReadPostingsAllowMissing(seenPath)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	merged, _ := seen.Merge(seenPostings, input)
	if err := seen.WritePostings(seenPath, merged); err != nil {
		return fmt.Errorf("write --seen: %w", err)
	}

	return nil
}

func printSearchSummary(ctx *Context, postings []models.Posting) {
	if ctx == nil || ctx.Err == nil {
		return
	}
	_, _ = fmt.Fprintf(ctx.Err, "%s\n", formatSearchSummary(postings))
}

func formatSearchSummary(postings []models.Posting) string {
	counts := debugsink.SiteCounts(postings)
	if len(counts) == 0 {
		return "summary: postings=0 by_board=none"
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s:%d", name, counts[name]))
	}

	return fmt.Sprintf("summary: postings=%d by_board=%s", len(postings), strings.Join(parts, ", "))
}

func resolveTitles(raw string, queryFile string, defaults []string) ([]string, error) {
	positional := config.SplitCSV(raw)
	var fileTitles []string
	if strings.TrimSpace(queryFile) != "" {
		var err error
		fileTitles, err = loadTitlesFromJSON(queryFile)
		if err != nil {
			return nil, err
		}
	}
	if len(positional) == 0 && len(fileTitles) == 0 {
		positional = defaults
	}
	return mergeAndNormalizeTitles(positional, fileTitles)
}

func mergeAndNormalizeTitles(primary []string, secondary []string) ([]string, error) {
	titles := make([]string, 0, len(primary)+len(secondary))
	seenTitles := make(map[string]struct{}, len(primary)+len(secondary))

	appendUnique := func(raw string) {
		title := strings.TrimSpace(raw)
		if title == "" {
			return
		}
		normalized := strings.ToLower(title)
		if _, exists := seenTitles[normalized]; exists {
			return
		}
		seenTitles[normalized] = struct{}{}
		titles = append(titles, title)
	}

	for _, title := range primary {
		appendUnique(title)
	}
	for _, title := range secondary {
		appendUnique(title)
	}

	if len(titles) == 0 {
		return nil, fmt.Errorf("at least one non-empty title is required")
	}
	if len(titles) > maxTitles {
		return nil, fmt.Errorf("too many titles: max %d", maxTitles)
	}

	return titles, nil
}

func loadTitlesFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read --query-file %q: %w", path, err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parse --query-file %q: %w", path, err)
	}

	switch value := decoded.(type) {
	case []any:
		return parseStringArray(value, path, "root array")
	case map[string]any:
		rawTitles, ok := value["job_titles"]
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"job_titles\" string array", path)
		}
		titles, ok := rawTitles.([]any)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: field \"job_titles\" must be an array of strings", path)
		}
		return parseStringArray(titles, path, "job_titles")
	default:
		return nil, fmt.Errorf("invalid --query-file %q: expected top-level string array or object with \"job_titles\" string array", path)
	}
}

func parseStringArray(values []any, path string, fieldName string) ([]string, error) {
	titles := make([]string, 0, len(values))
	for idx, rawValue := range values {
		title, ok := rawValue.(string)
		if !ok {
			return nil, fmt.Errorf("invalid --query-file %q: %s[%d] must be a string", path, fieldName, idx)
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func resolveBoards(raw string, defaults []string) ([]string, error) {
	requested := config.SplitCSV(strings.ToLower(raw))
	if len(requested) == 0 || (len(requested) == 1 && requested[0] == "all") {
		requested = defaults
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf("at least one board is required")
	}

	known := map[string]string{
		models.BoardIndeed:       models.BoardIndeed,
		models.BoardGlassdoor:    models.BoardGlassdoor,
		models.BoardGoogle:       models.BoardGoogle,
		models.BoardZipRecruiter: models.BoardZipRecruiter,
		models.BoardLinkedIn:     models.BoardLinkedIn,
		"ziprecruiter":           models.BoardZipRecruiter,
		"zip":                    models.BoardZipRecruiter,
		"zip-recruiter":          models.BoardZipRecruiter,
	}

	out := make([]string, 0, len(requested))
	seenBoards := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		canonical, ok := known[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown board: %s", name)
		}
		if _, exists := seenBoards[canonical]; exists {
			continue
		}
		seenBoards[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}

func resolveOutputPath(opts SearchOptions) string {
	if opts.Output != "" {
		return opts.Output
	}
	if opts.Out != "" {
		return opts.Out
	}
	return opts.File
}

func resolveFormat(ctx *Context, opts SearchOptions, outputPath string) (export.Format, error) {
	if outputPath != "" {
		if ctx.JSONOutput {
			return export.FormatJSON, nil
		}
		if ctx.PlainText {
			return export.FormatTSV, nil
		}
		if opts.Format == "" {
			return export.FormatCSV, nil
		}
		return parseFormat(opts.Format)
	}

	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return parseFormat(opts.Format)
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv":
		return export.FormatCSV, nil
	case "json":
		return export.FormatJSON, nil
	case "md", "markdown":
		return export.FormatMarkdown, nil
	case "tsv":
		return export.FormatTSV, nil
	case "table", "":
		return export.FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}

func startSearchIndicator(ctx *Context) func() {
	if ctx == nil || ctx.Err == nil || ctx.UI == nil {
		return nil
	}
	if !isTTY(ctx.Err) {
		return nil
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		start := time.Now()
		frames := []string{"|", "/", "-", "\\"}
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		index := 0

		for {
			select {
			case <-done:
				fmt.Fprint(ctx.Err, "\r\033[2K")
				return
			case <-ticker.C:
				seconds := int(time.Since(start).Seconds())
				frame := frames[index%len(frames)]
				fmt.Fprintf(ctx.Err, "\r\033[2KSearching... %ds %s", seconds, frame)
				index++
			}
		}
	}()

	return func() {
		close(done)
		<-stopped
	}
}
