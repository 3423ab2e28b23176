package docformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelaney/capstone-planner/internal/domain"
)

func TestBatchRequestsInsertFirst(t *testing.T) {
	rendered := Render(&domain.CapstonePlanData{Title: "X", CTEPathway: "Y"})
	reqs := BatchRequests(rendered)

	require.NotEmpty(t, reqs)
	insert := reqs[0].InsertText
	require.NotNil(t, insert, "first request must be the text insertion")
	assert.Equal(t, rendered.Text, insert.Text)
	assert.Equal(t, int64(1), insert.Location.Index)

	for i, req := range reqs[1:] {
		assert.NotNil(t, req.UpdateTextStyle, "request %d must be a style update", i+1)
	}
	assert.Len(t, reqs, len(rendered.Styles)+1)
}

func TestBatchRequestsStyleFields(t *testing.T) {
	reqs := BatchRequests(Rendered{
		Text: "Title\nBold only\n",
		Styles: []StyleRange{
			{Start: 1, End: 6, Bold: true, FontSizePt: 18},
			{Start: 7, End: 16, Bold: true},
		},
	})

	require.Len(t, reqs, 3)

	withSize := reqs[1].UpdateTextStyle
	assert.Equal(t, "bold,fontSize", withSize.Fields)
	assert.True(t, withSize.TextStyle.Bold)
	require.NotNil(t, withSize.TextStyle.FontSize)
	assert.Equal(t, float64(18), withSize.TextStyle.FontSize.Magnitude)
	assert.Equal(t, "PT", withSize.TextStyle.FontSize.Unit)
	assert.Equal(t, int64(1), withSize.Range.StartIndex)
	assert.Equal(t, int64(6), withSize.Range.EndIndex)

	boldOnly := reqs[2].UpdateTextStyle
	assert.Equal(t, "bold", boldOnly.Fields)
	assert.Nil(t, boldOnly.TextStyle.FontSize)
}

func TestBatchRequestsSkipsNoOpRanges(t *testing.T) {
	reqs := BatchRequests(Rendered{
		Text:   "plain\n",
		Styles: []StyleRange{{Start: 1, End: 6}},
	})
	assert.Len(t, reqs, 1, "a range with no attributes emits no style request")
}
