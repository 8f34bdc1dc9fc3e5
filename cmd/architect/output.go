package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

func printTemplates(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, t := range architect.Templates() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
	}
	_ = tw.Flush()
}

func progressPrinter(w io.Writer) workflow.Listener {
	return workflow.ListenerFuncs{
		Status: func(st workflow.Status) {
			switch st.Step {
			case workflow.StepGenerating:
				fmt.Fprintln(w, "⏳ "+st.Message)
			case workflow.StepComplete:
				fmt.Fprintln(w, "✅ Video ready")
			case workflow.StepError:
				fmt.Fprintln(w, "❌ "+st.Message)
			}
		},
		Notice: func(n workflow.Notice) {
			fmt.Fprintln(w, "🔑 "+n.Message)
		},
	}
}
