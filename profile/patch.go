package profile

// Patcher applies profile updates to already-rendered mention
// elements. The host renderer implements it: a DOM patcher queries
// anchors by pubkey (or by the correlation id when bindingID is set)
// and rewrites the name text and avatar src in place. If the target
// elements are gone the implementation does nothing; late updates are
// best-effort by design.
//
// bindingID is empty for broadcast updates that target every rendered
// mention of the pubkey, and set to a correlation id for blink frames
// aimed at a single element.
type Patcher interface {
	SetName(bindingID, pubkey, name string)
	SetAvatar(bindingID, pubkey, pictureURL string)
}

// NopPatcher discards all updates. Useful headless.
type NopPatcher struct{}

func (NopPatcher) SetName(bindingID, pubkey, name string)         {}
func (NopPatcher) SetAvatar(bindingID, pubkey, pictureURL string) {}
