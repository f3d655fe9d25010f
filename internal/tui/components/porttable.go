package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/allbin/polydaq"
	"github.com/allbin/polydaq/internal/tui/colors"
)

const (
	columnKeyPort    = "port"
	columnKeyType    = "type"
	columnKeyUSB     = "usb"
	columnKeySerial  = "serial"
	columnKeyProduct = "product"
)

// PortTable renders serial ports as a static table
type PortTable struct {
	table table.Model
}

func NewPortTable(ports []*polydaq.PortInfo) *PortTable {
	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 16),
		table.NewColumn(columnKeyType, "Type", 20),
		table.NewColumn(columnKeyUSB, "VID:PID", 11),
		table.NewColumn(columnKeySerial, "Serial", 18),
		table.NewColumn(columnKeyProduct, "Product", 28),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, info := range ports {
		usb, serial, product := "-", "-", "-"
		if info.IsUSB {
			if info.VendorID != "" {
				usb = info.VendorID + ":" + info.ProductID
			}
			if info.SerialNumber != "" {
				serial = info.SerialNumber
			}
			if info.Product != "" {
				product = info.Product
			}
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:    info.Path,
			columnKeyType:    info.Description,
			columnKeyUSB:     usb,
			columnKeySerial:  serial,
			columnKeyProduct: product,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(colors.Text).
			BorderForeground(colors.Surface2).
			Align(lipgloss.Left)).
		HeaderStyle(lipgloss.NewStyle().
			Foreground(colors.Mauve).
			Bold(true))

	return &PortTable{table: t}
}

func (pt *PortTable) View() string {
	return pt.table.View()
}
