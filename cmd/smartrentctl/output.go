package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrsteele09/smartrent-bridge/accessories"
	"github.com/jrsteele09/smartrent-bridge/devices"
)

func printDevices(out io.Writer, found []devices.Device) {
	if len(found) == 0 {
		warnColor.Fprintln(out, "No devices found")
		return
	}

	headerColor.Fprintf(out, "%d devices\n", len(found))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tACCESSORY\tROOM\tONLINE")
	for _, d := range found {
		kind := "unsupported"
		if k, ok := accessories.KindFor(d); ok {
			kind = string(k)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n", d.ID, d.Name, d.Type, kind, d.Room.Name, d.Online)
	}
	_ = tw.Flush()
}
