package control

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/olekukonko/tablewriter"
)

// Option is a single control-file entry: an uppercase keyword line
// followed by its value on the next line.
type Option struct {
	Keyword     string
	Value       string
	Description string
	Tags        []string
	PathLike    bool
}

// HasTag reports whether the option belongs to a tag group.
func (o *Option) HasTag(tag string) bool {
	for _, t := range o.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Registry holds the known control-file options in write order.
type Registry struct {
	opts  map[string]*Option
	order []string
}

// New returns a registry of all known keywords with empty values.
func New() *Registry {
	r := &Registry{opts: make(map[string]*Option, len(definitions))}
	for _, def := range definitions {
		opt := &Option{
			Keyword:     def.keyword,
			Description: def.description,
			Tags:        def.tags,
			PathLike:    def.pathLike,
		}
		r.opts[def.keyword] = opt
		r.order = append(r.order, def.keyword)
	}
	return r
}

// Option returns the option for a keyword, case-insensitively.
func (r *Registry) Option(keyword string) (*Option, bool) {
	opt, ok := r.opts[strings.ToLower(keyword)]
	return opt, ok
}

// Get returns the value of a keyword.
func (r *Registry) Get(keyword string) (string, error) {
	opt, ok := r.Option(keyword)
	if !ok {
		return "", fmt.Errorf("unknown control option %q", keyword)
	}
	return opt.Value, nil
}

// GetInt returns the value of a keyword parsed as an integer.
func (r *Registry) GetInt(keyword string) (int, error) {
	raw, err := r.Get(keyword)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("control option %s: %w", keyword, err)
	}
	return v, nil
}

// Set assigns the value of a keyword.
func (r *Registry) Set(keyword, value string) error {
	opt, ok := r.Option(keyword)
	if !ok {
		return fmt.Errorf("unknown control option %q", keyword)
	}
	opt.Value = value
	return nil
}

// Keywords returns all keywords in write order.
func (r *Registry) Keywords() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tagged returns the options carrying a tag, in write order.
func (r *Registry) Tagged(tag string) []*Option {
	var out []*Option
	for _, kw := range r.order {
		if opt := r.opts[kw]; opt.HasTag(tag) {
			out = append(out, opt)
		}
	}
	return out
}

// Tags returns the distinct tag names in the registry.
func (r *Registry) Tags() []string {
	seen := map[string]bool{}
	for _, kw := range r.order {
		for _, t := range r.opts[kw].Tags {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// ReadFile loads values from a control file. Keyword matching is
// case-insensitive and the value is taken from the line that follows the
// keyword line; lines that match no known keyword are ignored.
func (r *Registry) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open control file: %w", err)
	}
	defer f.Close()

	return r.Read(f)
}

// Read consumes a control file from an io.Reader.
func (r *Registry) Read(src io.Reader) error {
	scanner := bufio.NewScanner(src)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read control file: %w", err)
	}

	for i, line := range lines {
		if line == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSuffix(strings.Fields(line)[0], ":"))
		opt, ok := r.opts[key]
		if !ok || i+1 >= len(lines) {
			continue
		}
		opt.Value = lines[i+1]
	}
	return nil
}

// WriteFile writes every option with a value as KEYWORD: / value line
// pairs, atomically, in registry order.
func (r *Registry) WriteFile(path string) error {
	var buf bytes.Buffer
	for _, kw := range r.order {
		opt := r.opts[kw]
		if opt.Value == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s:\n%s\n", strings.ToUpper(opt.Keyword), opt.Value)
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write control file: %w", err)
	}
	return nil
}

// PrintTags renders the options of one tag group as a table.
func (r *Registry) PrintTags(w io.Writer, tag string) error {
	opts := r.Tagged(tag)
	if len(opts) == 0 {
		return fmt.Errorf("unknown tag %q (known: %s)", tag, strings.Join(r.Tags(), ", "))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Keyword", "Value", "Description"})
	table.SetAutoWrapText(false)
	for _, opt := range opts {
		table.Append([]string{strings.ToUpper(opt.Keyword), opt.Value, opt.Description})
	}
	table.Render()
	return nil
}

// StartDate parses the STARTDATE option.
func (r *Registry) StartDate() (time.Time, error) {
	raw, err := r.Get("startdate")
	if err != nil {
		return time.Time{}, err
	}
	return ParseDate(raw)
}

// ParseDate parses a model date of the form MM/DD/YYYY/HH/MM; the minute
// field may be omitted.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 4 && len(parts) != 5 {
		return time.Time{}, fmt.Errorf("date %q: want MM/DD/YYYY/HH[/MM]", s)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: %w", s, err)
		}
		nums[i] = v
	}

	minute := 0
	if len(nums) == 5 {
		minute = nums[4]
	}

	t := time.Date(nums[2], time.Month(nums[0]), nums[1], nums[3], minute, 0, 0, time.UTC)
	if t.Month() != time.Month(nums[0]) || t.Day() != nums[1] {
		return time.Time{}, fmt.Errorf("date %q: out of range", s)
	}
	return t, nil
}

// FormatDate renders a time in model date form.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d/%02d/%02d",
		int(t.Month()), t.Day(), t.Year(), t.Hour(), t.Minute())
}
