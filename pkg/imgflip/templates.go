/*
2019 © Postgres.ai
*/

package imgflip

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize/english"
	"github.com/olekukonko/tablewriter"
)

// WriteTemplates renders meme templates as a Markdown table.
func WriteTemplates(w io.Writer, memes []Meme) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Boxes"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)

	for _, meme := range memes {
		table.Append([]string{meme.ID, meme.Name, strconv.Itoa(meme.BoxCount)})
	}

	table.Render()

	_, err := fmt.Fprintf(w, "\n%s\n", english.Plural(len(memes), "template", ""))

	return err
}
