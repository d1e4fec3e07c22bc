// Package report renders the ranked lists into a single self-contained
// HTML page. The page carries only list ids; the upstream widgets
// script hydrates each tweet id into an embedded tweet at view time,
// which keeps the file small enough to regenerate on every run.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"ornithology/pkg/logger"
)

//go:embed page.html.tmpl
var pageSource string

var page = template.Must(template.New("page").Parse(pageSource))

// Group names one tweet column on the page. The JSON field names match
// the properties the page script reads.
type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Groups lists the tweet columns in display order.
var Groups = []Group{
	{ID: "top_tweets", Title: "Top tweets"},
	{ID: "most_talked_about_tweets", Title: "Most talked about tweets"},
	{ID: "most_shared_tweets", Title: "Most shared tweets"},
	{ID: "notable_tweets", Title: "Notable tweets (at the time)"},
	{ID: "talked_about_tweets", Title: "Talked about tweets (at the time)"},
	{ID: "over_shared_tweets", Title: "Widely shared tweets (at the time)"},
	{ID: "old_rts", Title: "Random old retweets"},
}

// followerLists are rendered as a banner above the tweet columns.
var followerLists = []string{"top_followers", "neat_followers"}

// Page is everything the template consumes. Lists maps each list id to
// its members: tweet ids for the Groups columns, usernames for the
// follower lists.
type Page struct {
	Username string
	Lists    map[string][]string
}

// Render writes the HTML page. Every list id the page script reads
// must be present in p.Lists, if only as an empty list.
func Render(w io.Writer, p Page) error {
	for _, g := range Groups {
		if _, ok := p.Lists[g.ID]; !ok {
			return fmt.Errorf("render report: list %q missing", g.ID)
		}
	}
	for _, id := range followerLists {
		if _, ok := p.Lists[id]; !ok {
			return fmt.Errorf("render report: list %q missing", id)
		}
	}

	// A nil list must serialize as [], not null, or the page script
	// trips over it.
	lists := make(map[string][]string, len(p.Lists))
	for id, members := range p.Lists {
		if members == nil {
			members = []string{}
		}
		lists[id] = members
	}

	data := struct {
		Username string
		Lists    map[string][]string
		Groups   []Group
	}{p.Username, lists, Groups}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteFile renders the page to path, replacing any previous report in
// one rename.
func WriteFile(path string, p Page) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}

	if err := Render(file, p); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync report file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace report file: %w", err)
	}

	logger.GetLogger().DebugWithFields("report written", map[string]interface{}{
		"path": path,
	})

	return nil
}
