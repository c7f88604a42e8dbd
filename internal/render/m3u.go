package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/voyagen/bretontv/internal/models"
)

// M3U writes channels back out as an extended M3U playlist with only the
// present attributes. Double quotes in values become single quotes; values
// containing a comma do not survive a re-parse, since the name starts at the
// first comma of the #EXTINF line.
func M3U(w io.Writer, channels []models.Channel) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#EXTM3U\n")
	for _, ch := range channels {
		meta := ch.Metadata()
		var attrs strings.Builder
		for _, key := range models.AttrKeys {
			if v := meta[key]; v != nil {
				fmt.Fprintf(&attrs, ` %s="%s"`, key, strings.ReplaceAll(*v, `"`, "'"))
			}
		}
		fmt.Fprintf(bw, "#EXTINF:-1%s,%s\n", attrs.String(), ch.Name)
		bw.WriteString(ch.URL + "\n")
	}
	return bw.Flush()
}
