package cli

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/facet-hq/facet/docs"
	"github.com/facet-hq/facet/internal/ui"
)

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the bundled documentation",
	Long: `Without arguments, lists the available topics. With a topic name,
renders that document to the terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, err := docTopics()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(ui.Header("Topics"))
			for _, topic := range topics {
				fmt.Printf("  %s\n", topic)
			}
			fmt.Println(ui.Hint("\nRead one with 'facet docs <topic>'"))
			return nil
		}

		topic := strings.TrimSuffix(args[0], ".md")
		file, ok := findTopic(topics, topic)
		if !ok {
			return fmt.Errorf("unknown topic '%s'\n\nRun 'facet docs' to list topics", topic)
		}
		content, err := fs.ReadFile(docs.FS, file+".md")
		if err != nil {
			return err
		}

		display := ui.NewDisplayContext()
		if !display.IsTTY {
			fmt.Print(string(content))
			return nil
		}
		rendered, err := ui.RenderMarkdown(string(content), display.TermWidth)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

// docTopics lists embedded docs as slash-separated topic names without the
// .md suffix.
func docTopics() ([]string, error) {
	var topics []string
	err := fs.WalkDir(docs.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".md") {
			topics = append(topics, strings.TrimSuffix(p, ".md"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(topics)
	return topics, nil
}

// findTopic matches a topic by full path or bare file name.
func findTopic(topics []string, name string) (string, bool) {
	for _, t := range topics {
		if t == name {
			return t, true
		}
	}
	for _, t := range topics {
		if path.Base(t) == name {
			return t, true
		}
	}
	return "", false
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
