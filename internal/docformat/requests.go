package docformat

import (
	"strings"

	"google.golang.org/api/docs/v1"
)

// BatchRequests converts a rendered plan into the ordered Google Docs
// batchUpdate request list: one insertText at index 1 followed by one
// updateTextStyle per style range. The whole slice must be submitted as a
// single batch; splitting it would leave the style offsets pointing into a
// document that does not contain the text yet.
func BatchRequests(r Rendered) []*docs.Request {
	reqs := make([]*docs.Request, 0, len(r.Styles)+1)

	reqs = append(reqs, &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Text:     r.Text,
			Location: &docs.Location{Index: 1},
		},
	})

	for _, s := range r.Styles {
		style := &docs.TextStyle{}
		var fields []string
		if s.Bold {
			style.Bold = true
			fields = append(fields, "bold")
		}
		if s.FontSizePt > 0 {
			style.FontSize = &docs.Dimension{
				Magnitude: s.FontSizePt,
				Unit:      "PT",
			}
			fields = append(fields, "fontSize")
		}
		if len(fields) == 0 {
			continue
		}

		reqs = append(reqs, &docs.Request{
			UpdateTextStyle: &docs.UpdateTextStyleRequest{
				Range: &docs.Range{
					StartIndex: s.Start,
					EndIndex:   s.End,
				},
				TextStyle: style,
				Fields:    strings.Join(fields, ","),
			},
		})
	}

	return reqs
}
