package notion

import (
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoder/internal/blocks"
	"decoder/internal/publish"
)

func TestToProperties_Full(t *testing.T) {
	score := 8
	now := time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC)
	props := toProperties(publish.Properties{
		Subject:       "Contrato",
		Status:        publish.StatusPending,
		ReceivedAt:    now,
		Sender:        "Maria <maria@example.com>",
		Priority:      "Alta",
		SourceType:    "URL",
		Framework:     "SWOT",
		OriginURL:     "https://example.com/a",
		Confidence:    &score,
		Impact:        "Alto",
		Tags:          []string{"vendas", "jurídico"},
		Deadline:      "2024-02-01",
		Origin:        publish.OriginManual,
		Owner:         "user-1",
		CorrelationID: "corr",
		Fingerprint:   "abc123",
		AppLink:       "https://app.test/x",
		UpdatedAt:     now,
	})

	title, ok := props[PropSubject].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Contrato", title.Title[0].Text.Content)

	assert.Equal(t, "maria@example.com", props[PropSender].(notionapi.EmailProperty).Email)
	assert.Equal(t, "Alta", props[PropPriority].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, "Pendente", props[PropStatus].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, float64(8), props[PropConfidence].(notionapi.NumberProperty).Number)
	assert.Len(t, props[PropTags].(notionapi.MultiSelectProperty).MultiSelect, 2)
	assert.Equal(t, notionapi.UserID("user-1"), props[PropOwner].(notionapi.PeopleProperty).People[0].ID)
	assert.Equal(t, "abc123", props[PropFingerprint].(notionapi.RichTextProperty).RichText[0].Text.Content)

	date := props[PropReceivedAt].(notionapi.DateProperty)
	assert.Equal(t, now, time.Time(*date.Date.Start))
	deadline := props[PropDeadline].(notionapi.DateProperty)
	assert.Equal(t, 2024, time.Time(*deadline.Date.Start).Year())

	assert.NotContains(t, props, PropEffort)
	assert.NotContains(t, props, PropNotifyLink)
}

func TestToProperties_OnlySupplied(t *testing.T) {
	now := time.Now()
	props := toProperties(publish.Properties{UpdatedAt: now, AppLink: "https://app.test"})
	assert.Len(t, props, 2)
	assert.Contains(t, props, PropUpdatedAt)
	assert.Contains(t, props, PropAppLink)

	assert.Empty(t, toProperties(publish.Properties{Deadline: "not a date"}))
}

func TestSenderAddress(t *testing.T) {
	assert.Equal(t, "a@b.com", senderAddress("A <a@b.com>"))
	assert.Equal(t, "a@b.com", senderAddress("a@b.com"))
	assert.Equal(t, "not an address", senderAddress("not an address"))
}

func TestToBlocks(t *testing.T) {
	in := []blocks.Block{
		blocks.NewHeading2("Título"),
		blocks.NewHeading3("Sub"),
		blocks.NewParagraph(strings.Repeat("a", 2500)),
		blocks.NewBulletedItem("item"),
		blocks.NewNumberedItem("passo"),
		blocks.NewQuote("citação"),
		blocks.NewDivider(),
		blocks.NewToDo("tarefa"),
		{Type: "unknown"},
	}
	out := toBlocks(in)
	require.Len(t, out, 8)

	var types []notionapi.BlockType
	for _, b := range out {
		types = append(types, b.GetType())
	}
	assert.Equal(t, []notionapi.BlockType{
		notionapi.BlockTypeHeading2, notionapi.BlockTypeHeading3, notionapi.BlockTypeParagraph,
		notionapi.BlockTypeBulletedListItem, notionapi.BlockTypeNumberedListItem, notionapi.BlockTypeQuote,
		notionapi.BlockTypeDivider, notionapi.BlockTypeToDo,
	}, types)

	para := out[2].(*notionapi.ParagraphBlock)
	assert.Len(t, para.Paragraph.RichText, 2)
	todo := out[7].(*notionapi.ToDoBlock)
	assert.False(t, todo.ToDo.Checked)
	assert.Equal(t, "tarefa", todo.ToDo.RichText[0].Text.Content)
}
