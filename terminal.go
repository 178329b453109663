package analyzer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/markdown"
)

// Format selects how TerminalView prints results.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a user-supplied output format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or markdown)", s)
}

// TerminalView is a View that prints progress lines and the final report to
// an io.Writer.
type TerminalView struct {
	out    io.Writer
	format Format

	mu            sync.Mutex
	name          string
	handle        string
	status        string
	percent       int
	loading       bool
	submitEnabled bool
	cards         []TweetCard
	placeholder   string
	lastErr       string
}

// NewTerminalView creates a TerminalView writing to out.
func NewTerminalView(out io.Writer, format Format) *TerminalView {
	if format == "" {
		format = FormatText
	}
	return &TerminalView{out: out, format: format, submitEnabled: true}
}

func (v *TerminalView) ShowError(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastErr = msg
	fmt.Fprintf(v.out, "error: %s\n", msg)
}

func (v *TerminalView) ClearError() {
	v.mu.Lock()
	v.lastErr = ""
	v.mu.Unlock()
}

func (v *TerminalView) ShowLoading(status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = true
	v.percent = 0
	v.status = status
	fmt.Fprintf(v.out, "[%3d%%] %s\n", 0, status)
}

func (v *TerminalView) HideLoading() {
	v.mu.Lock()
	v.loading = false
	v.mu.Unlock()
}

// SetProgress prints a line only when the percentage or status changed.
func (v *TerminalView) SetProgress(percent int, status string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if percent == v.percent && status == v.status {
		return
	}
	v.percent = percent
	v.status = status
	fmt.Fprintf(v.out, "[%3d%%] %s\n", percent, status)
}

func (v *TerminalView) ShowProfile(name, handle string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name = name
	v.handle = handle
	fmt.Fprintf(v.out, "Profile: %s (%s)\n", name, handle)
}

func (v *TerminalView) ClearTweets() {
	v.mu.Lock()
	v.cards = nil
	v.placeholder = ""
	v.mu.Unlock()
}

func (v *TerminalView) ShowPlaceholder(msg string) {
	v.mu.Lock()
	v.placeholder = msg
	v.mu.Unlock()
}

func (v *TerminalView) AppendCard(card TweetCard) {
	v.mu.Lock()
	v.cards = append(v.cards, card)
	v.mu.Unlock()
}

// ShowResults prints the collected cards in the configured format.
func (v *TerminalView) ShowResults() {
	v.mu.Lock()
	defer v.mu.Unlock()
	var err error
	switch v.format {
	case FormatMarkdown:
		err = v.writeMarkdown()
	default:
		v.writeText()
	}
	if err != nil {
		fmt.Fprintf(v.out, "error: write report: %v\n", err)
	}
}

func (v *TerminalView) HideResults() {}

func (v *TerminalView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	v.submitEnabled = enabled
	v.mu.Unlock()
}

// Cards returns a copy of the cards currently displayed.
func (v *TerminalView) Cards() []TweetCard {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]TweetCard(nil), v.cards...)
}

func (v *TerminalView) writeText() {
	fmt.Fprintln(v.out)
	fmt.Fprintf(v.out, "Top tweets for %s - %s\n", v.handle, v.status)
	fmt.Fprintln(v.out, strings.Repeat("=", 60))
	if v.placeholder != "" {
		fmt.Fprintln(v.out, v.placeholder)
		return
	}
	for i, c := range v.cards {
		fmt.Fprintf(v.out, "%d. %s %s · %s\n", i+1, c.Username, c.Handle, c.Date)
		fmt.Fprintf(v.out, "   %s\n", strings.ReplaceAll(c.Text, "\n", "\n   "))
		fmt.Fprintf(v.out, "   replies %d | retweets %d | likes %d | views %s | engagement %s\n",
			c.Replies, c.Retweets, c.Likes, c.Views, c.Engagement)
		if c.URL != "" {
			fmt.Fprintf(v.out, "   %s\n", c.URL)
		}
		fmt.Fprintln(v.out)
	}
}

func (v *TerminalView) writeMarkdown() error {
	md := markdown.NewMarkdown(v.out)
	md.H1("Tweet analysis: " + v.handle)
	md.PlainText("")
	md.PlainText(v.status)
	md.PlainText("")

	if v.placeholder != "" {
		md.Note(v.placeholder)
		return md.Build()
	}

	rows := make([][]string, 0, len(v.cards))
	for i, c := range v.cards {
		link := ""
		if c.URL != "" {
			link = "[View Tweet](" + c.URL + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Date,
			strconv.FormatInt(c.Replies, 10),
			strconv.FormatInt(c.Retweets, 10),
			strconv.FormatInt(c.Likes, 10),
			c.Views,
			c.Engagement,
			link,
		})
	}
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"#", "Date", "Replies", "Retweets", "Likes", "Views", "Engagement", "Link"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Tweets")
	md.PlainText("")
	for i, c := range v.cards {
		md.H3(fmt.Sprintf("%d. %s %s", i+1, c.Username, c.Handle))
		md.PlainText("")
		md.PlainText(c.Text)
		md.PlainText("")
	}
	md.HorizontalRule()
	return md.Build()
}
