package tour

import "github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"

// outbox 收集一次事件处理产生的出站消息
type outbox struct {
	chunkRunes   int
	captionRunes int
	msgs         []entity.Outbound
}

func newOutbox(chunkRunes, captionRunes int) *outbox {
	return &outbox{chunkRunes: chunkRunes, captionRunes: captionRunes}
}

// text 空文本不产生消息
func (o *outbox) text(s string, keyboard ...entity.Button) {
	chunks := SplitText(s, o.chunkRunes)
	if len(chunks) == 0 {
		return
	}
	o.msgs = append(o.msgs, entity.Outbound{
		Type:     entity.OutboundText,
		Chunks:   chunks,
		Keyboard: keyboard,
	})
}

// artwork 有图片时讲解开头作为图片说明，其余部分作为文本跟随
func (o *outbox) artwork(a *entity.Artwork, narration string) {
	if !a.HasImage() {
		o.text(narration)
		return
	}
	caption, rest := SplitCaption(narration, o.captionRunes)
	o.msgs = append(o.msgs, entity.Outbound{
		Type:     entity.OutboundPhoto,
		ImageRef: a.ImageRef,
		Caption:  caption,
	})
	o.text(rest)
}

func (o *outbox) messages() []entity.Outbound {
	return o.msgs
}
