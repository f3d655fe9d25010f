package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/allbin/polydaq/internal/tui/keys"
	"github.com/allbin/polydaq/internal/tui/styles"
)

// FormatEvent renders ev as a styled line. A read dropped on a closed link
// and an exchange abandoned with the link render empty; the operator only
// sees the port closed notice.
func FormatEvent(ev Event) string {
	switch ev.Kind {
	case EventPorts:
		if len(ev.Ports) == 0 {
			return styles.NoticeStyle.Render("No candidate serial ports found")
		}
		return styles.InfoStyle.Render("Candidate ports:") + " " + strings.Join(ev.Ports, " ")
	case EventLinkOpen:
		return styles.StatusConnectedStyle.Render("● port open") + " " + ev.Path
	case EventLinkClosed:
		return styles.StatusDisconnectedStyle.Render("○ port closed") + " " + ev.Path
	case EventHelp:
		return keys.HelpText()
	case EventUnknown:
		return styles.WarningStyle.Render(fmt.Sprintf("unknown command %s, h for help", quoteKey(ev.Char)))
	case EventRequest:
		return styles.RequestStyle.Render(fmt.Sprintf("↗ ch %-2d", ev.Channel)) + " " +
			styles.NoticeStyle.Render(quoteKey(ev.Char))
	case EventBusy:
		return styles.WarningStyle.Render(fmt.Sprintf("channel %d ignored, waiting for reply to %s", ev.Channel, quoteKey(ev.Char)))
	case EventReading:
		return styles.ReadingStyle.Render(fmt.Sprintf("↙ ch %-2d", ev.Channel)) + " " +
			styles.ValueStyle.Render(printable(ev.Text))
	case EventTimeout:
		return styles.ErrorStyle.Render(fmt.Sprintf("✗ ch %-2d no reply", ev.Channel))
	case EventUnsolicited:
		return styles.NoticeStyle.Render("· " + printable(ev.Text))
	}
	return ""
}

// quoteKey shows a key the way the operator typed it, control keys as ^X
func quoteKey(ch rune) string {
	if ch < 0x20 {
		return "^" + string(ch+'@')
	}
	if ch == 0x7f {
		return "^?"
	}
	return strconv.QuoteRune(ch)
}

// printable replaces control bytes so device output cannot drive the terminal
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '.'
		}
		return r
	}, s)
}
