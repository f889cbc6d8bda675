package notion

import (
	"net/mail"
	"time"

	"github.com/jomei/notionapi"

	"decoder/internal/blocks"
	"decoder/internal/publish"
)

// Database property names.
const (
	PropSubject     = "📧 Assunto"
	PropStatus      = "Status"
	PropReceivedAt  = "📅 Data Recebimento"
	PropSender      = "👤 Remetente"
	PropPriority    = "🎯 Prioridade"
	PropSourceType  = "Tipo de Fonte"
	PropFramework   = "Framework"
	PropOriginURL   = "URL de Origem"
	PropConfidence  = "Score de Confiança"
	PropImpact      = "Impacto"
	PropEffort      = "Esforço"
	PropROI         = "ROI Estimado"
	PropTags        = "Tags/Temas"
	PropDeadline    = "Prazo Sugerido"
	PropOrigin      = "Origem da Análise"
	PropCorrelation = "ID de Correlação"
	PropFingerprint = "Hash de Conteúdo"
	PropNotifyLink  = "Link WhatsApp"
	PropAppLink     = "Link da Análise"
	PropUpdatedAt   = "Última Atualização"
	PropOwner       = "Responsável"
)

// toProperties maps the supplied fields of p onto the database schema. Absent
// fields produce no entry.
func toProperties(p publish.Properties) notionapi.Properties {
	props := notionapi.Properties{}

	if p.Subject != "" {
		props[PropSubject] = notionapi.TitleProperty{Title: richText(p.Subject)}
	}
	if p.Sender != "" {
		props[PropSender] = notionapi.EmailProperty{Email: senderAddress(p.Sender)}
	}
	if p.OriginURL != "" {
		props[PropOriginURL] = notionapi.URLProperty{URL: p.OriginURL}
	}
	if p.NotifyLink != "" {
		props[PropNotifyLink] = notionapi.URLProperty{URL: p.NotifyLink}
	}
	if p.AppLink != "" {
		props[PropAppLink] = notionapi.URLProperty{URL: p.AppLink}
	}
	if p.Confidence != nil {
		props[PropConfidence] = notionapi.NumberProperty{Number: float64(*p.Confidence)}
	}
	if len(p.Tags) > 0 {
		opts := make([]notionapi.Option, 0, len(p.Tags))
		for _, t := range p.Tags {
			opts = append(opts, notionapi.Option{Name: t})
		}
		props[PropTags] = notionapi.MultiSelectProperty{MultiSelect: opts}
	}
	if p.Owner != "" {
		props[PropOwner] = notionapi.PeopleProperty{People: []notionapi.User{{ID: notionapi.UserID(p.Owner)}}}
	}

	for name, v := range map[string]string{
		PropStatus:     p.Status,
		PropPriority:   p.Priority,
		PropSourceType: p.SourceType,
		PropFramework:  p.Framework,
		PropImpact:     p.Impact,
		PropEffort:     p.Effort,
		PropROI:        p.ROI,
		PropOrigin:     p.Origin,
	} {
		if v != "" {
			props[name] = notionapi.SelectProperty{Select: notionapi.Option{Name: v}}
		}
	}

	for name, v := range map[string]string{
		PropCorrelation: p.CorrelationID,
		PropFingerprint: p.Fingerprint,
	} {
		if v != "" {
			props[name] = notionapi.RichTextProperty{RichText: richText(v)}
		}
	}

	for name, t := range map[string]time.Time{
		PropReceivedAt: p.ReceivedAt,
		PropUpdatedAt:  p.UpdatedAt,
		PropDeadline:   parseDate(p.Deadline),
	} {
		if !t.IsZero() {
			props[name] = dateProperty(t)
		}
	}

	return props
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// senderAddress pulls the bare address out of "Name <addr>".
func senderAddress(from string) string {
	if a, err := mail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}

func richText(s string) []notionapi.RichText {
	return fragmentsText(blocks.SplitFragments(s, blocks.MaxFragment))
}

func fragmentsText(fragments []string) []notionapi.RichText {
	out := make([]notionapi.RichText, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, notionapi.RichText{Text: &notionapi.Text{Content: f}})
	}
	return out
}

func toBlocks(in []blocks.Block) []notionapi.Block {
	out := make([]notionapi.Block, 0, len(in))
	for _, b := range in {
		if nb := toBlock(b); nb != nil {
			out = append(out, nb)
		}
	}
	return out
}

func toBlock(b blocks.Block) notionapi.Block {
	rt := fragmentsText(b.Fragments)
	basic := func(t notionapi.BlockType) notionapi.BasicBlock {
		return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
	}

	switch b.Type {
	case blocks.Paragraph:
		return &notionapi.ParagraphBlock{BasicBlock: basic(notionapi.BlockTypeParagraph), Paragraph: notionapi.Paragraph{RichText: rt}}
	case blocks.Heading2:
		return &notionapi.Heading2Block{BasicBlock: basic(notionapi.BlockTypeHeading2), Heading2: notionapi.Heading{RichText: rt}}
	case blocks.Heading3:
		return &notionapi.Heading3Block{BasicBlock: basic(notionapi.BlockTypeHeading3), Heading3: notionapi.Heading{RichText: rt}}
	case blocks.BulletedItem:
		return &notionapi.BulletedListItemBlock{BasicBlock: basic(notionapi.BlockTypeBulletedListItem), BulletedListItem: notionapi.ListItem{RichText: rt}}
	case blocks.NumberedItem:
		return &notionapi.NumberedListItemBlock{BasicBlock: basic(notionapi.BlockTypeNumberedListItem), NumberedListItem: notionapi.ListItem{RichText: rt}}
	case blocks.Quote:
		return &notionapi.QuoteBlock{BasicBlock: basic(notionapi.BlockTypeQuote), Quote: notionapi.Quote{RichText: rt}}
	case blocks.Divider:
		return &notionapi.DividerBlock{BasicBlock: basic(notionapi.BlockTypeDivider), Divider: notionapi.Divider{}}
	case blocks.ToDo:
		return &notionapi.ToDoBlock{BasicBlock: basic(notionapi.BlockTypeToDo), ToDo: notionapi.ToDo{RichText: rt, Checked: b.Checked}}
	}
	return nil
}
