package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kokistudios/board/internal/post"
	"github.com/kokistudios/board/internal/query"
	"github.com/kokistudios/board/internal/rules"
	"github.com/kokistudios/board/internal/ui"
)

// postExtensions are the file types picked up when a directory is given.
var postExtensions = map[string]bool{".txt": true, ".md": true, ".post": true}

// source is one post read from disk, in the order it was collected.
type source struct {
	Path string
	Doc  *post.Document
}

// collectPaths expands directories into their post files, sorted by name.
// Files named explicitly are kept whatever their extension.
func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == "-" {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot list %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !postExtensions[filepath.Ext(e.Name())] {
				continue
			}
			found = append(found, filepath.Join(arg, e.Name()))
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// readPost parses one file. The file's modification time stamps the
// document; stdin is stamped with the current time.
func readPost(rs rules.RuleSet, path string, stdin io.Reader) (*post.Document, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("cannot read stdin: %w", err)
		}
		return parseSource(rs, data, time.Now()), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return parseSource(rs, data, info.ModTime()), nil
}

// parseSource parses a post as read from a file or stdin. The final line
// terminator ends the last line instead of opening an empty one; Text keeps
// the bytes exactly as read.
func parseSource(rs rules.RuleSet, data []byte, stamp time.Time) *post.Document {
	raw := string(data)
	doc := post.Parse(rs, strings.TrimSuffix(raw, "\n"), stamp, stamp)
	doc.Text = raw
	return doc
}

func readPosts(rs rules.RuleSet, args []string, stdin io.Reader) ([]source, error) {
	paths, err := collectPaths(args)
	if err != nil {
		return nil, err
	}
	sources := make([]source, 0, len(paths))
	for _, p := range paths {
		doc, err := readPost(rs, p, stdin)
		if err != nil {
			return nil, err
		}
		ui.Logger.Debug("parsed post", "path", p, "blocks", len(doc.Blocks), "inlines", len(doc.Inlines))
		sources = append(sources, source{Path: p, Doc: doc})
	}
	return sources, nil
}

func writeDocument(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s (use yaml or json)", format)
	}
}

func parseCmd() *cobra.Command {
	var rulesPath, format string
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse a post into blocks and inline spans",
		Long:  "Parse one post and print the resulting document: top-level blocks, grouped list items, and the flat list of inline spans.",
		Example: `  board parse notes/today.txt
  echo "- milk #shopping" | board parse - --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			rs, err := loadRules(s, rulesPath)
			if err != nil {
				return err
			}
			doc, err := readPost(rs, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if format == "" {
				format = s.Config.Output.Format
			}
			return writeDocument(ui.Data(), format, doc)
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule set file to use instead of the configured one")
	cmd.Flags().StringVar(&format, "format", "", "Output format: yaml or json (default from config)")
	return cmd
}

// buildQuery merges --query with --tag and --untagged.
func buildQuery(text string, tags []string, untagged bool) (query.Query, error) {
	var q query.Query
	if text != "" {
		parsed, err := query.ParseQuery(text)
		if err != nil {
			return query.Query{}, err
		}
		q = parsed
	}
	for _, t := range tags {
		t = strings.TrimPrefix(t, "#")
		if t == "" {
			return query.Query{}, fmt.Errorf("--tag: %w", query.ErrEmptyTag)
		}
		if !containsString(q.Tags, t) {
			q.Tags = append(q.Tags, t)
		}
	}
	q.Untagged = q.Untagged || untagged
	return q, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func filterCmd() *cobra.Command {
	var (
		rulesPath string
		queryText string
		tags      []string
		untagged  bool
	)
	cmd := &cobra.Command{
		Use:   "filter <file|dir>...",
		Short: "List posts matching a tag query",
		Long: `Parse every post and keep those matching the query. All requested tags must be present.
--untagged keeps posts without any inline span and is ignored when tags are given.
The INDEX column is the post's position among all inputs, before filtering.`,
		Example: `  board filter notes/ --tag work --tag urgent
  board filter notes/ -q "#work untagged"
  board filter notes/ --untagged`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(queryText, tags, untagged)
			if err != nil {
				return err
			}
			s, err := loadStore()
			if err != nil {
				return err
			}
			rs, err := loadRules(s, rulesPath)
			if err != nil {
				return err
			}
			sources, err := readPosts(rs, args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			docs := make([]*post.Document, len(sources))
			for i, src := range sources {
				docs[i] = src.Doc
			}
			results := query.Filter(docs, q)
			ui.Logger.Debug("filtered posts", "query", q.String(), "total", len(docs), "matched", len(results))

			prefix := rs.TagPrefix()
			if len(results) == 0 {
				ui.EmptyState(fmt.Sprintf("No posts match %s.", q.Format(prefix)))
				return nil
			}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{
					strconv.Itoa(r.Index),
					sources[r.Index].Path,
					strconv.Itoa(len(r.Document.Blocks)),
					ui.Tags(prefix, r.Document.Tags()),
				}
			}
			ui.Table([]string{"INDEX", "POST", "BLOCKS", "TAGS"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule set file to use instead of the configured one")
	cmd.Flags().StringVarP(&queryText, "query", "q", "", `Query text, e.g. "#work #urgent" or "untagged"`)
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "Required tag (repeatable)")
	cmd.Flags().BoolVar(&untagged, "untagged", false, "Only posts without inline spans")
	return cmd
}

func tagsCmd() *cobra.Command {
	var rulesPath string
	cmd := &cobra.Command{
		Use:   "tags <file|dir>...",
		Short: "Count tags across posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			rs, err := loadRules(s, rulesPath)
			if err != nil {
				return err
			}
			sources, err := readPosts(rs, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			docs := make([]*post.Document, len(sources))
			for i, src := range sources {
				docs[i] = src.Doc
			}

			counts := query.TagCounts(docs)
			if len(counts) == 0 {
				ui.EmptyState("No tags found.")
				return nil
			}
			rows := make([][]string, len(counts))
			for i, c := range counts {
				rows[i] = []string{ui.Tags(rs.TagPrefix(), []string{c.Tag}), strconv.Itoa(c.Count)}
			}
			ui.Table([]string{"TAG", "POSTS"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Rule set file to use instead of the configured one")
	return cmd
}
