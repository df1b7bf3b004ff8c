package envelope

import "github.com/prfvault/prfvault/internal/codec"

// WrappedContentKey is one recipient's copy of an entry's content key.
type WrappedContentKey struct {
	CredentialID           codec.Bytes `json:"credential_id"`
	WrappingExchangePubkey codec.Bytes `json:"wrapping_exchange_pubkey"`
	WrappedContentKey      codec.Bytes `json:"wrapped_content_key"`
}

// EncryptedContent is one encrypted vault entry together with the content
// key wrapped for each of its recipients.
type EncryptedContent struct {
	Ciphertext     codec.Bytes         `json:"ciphertext"`
	IV             codec.Bytes         `json:"iv"`
	AdditionalData codec.Bytes         `json:"additional_data"`
	Recipients     []WrappedContentKey `json:"recipients"`
}

// Recipient returns the wrapped key addressed to credential id.
func (e EncryptedContent) Recipient(id []byte) (WrappedContentKey, bool) {
	for _, r := range e.Recipients {
		if r.CredentialID.Equal(id) {
			return r, true
		}
	}
	return WrappedContentKey{}, false
}

// RecipientIDs returns the credential ids the entry is encrypted to, in
// order.
func (e EncryptedContent) RecipientIDs() [][]byte {
	ids := make([][]byte, 0, len(e.Recipients))
	for _, r := range e.Recipients {
		ids = append(ids, r.CredentialID.Clone())
	}
	return ids
}

// WithoutRecipient returns a copy of e with every wrapped key for id
// removed, and whether anything was removed.
func (e EncryptedContent) WithoutRecipient(id []byte) (EncryptedContent, bool) {
	out := e.Clone()
	kept := out.Recipients[:0]
	for _, r := range out.Recipients {
		if !r.CredentialID.Equal(id) {
			kept = append(kept, r)
		}
	}
	removed := len(kept) != len(out.Recipients)
	out.Recipients = kept
	return out, removed
}

// Clone returns a deep copy of e.
func (e EncryptedContent) Clone() EncryptedContent {
	out := EncryptedContent{
		Ciphertext:     e.Ciphertext.Clone(),
		IV:             e.IV.Clone(),
		AdditionalData: e.AdditionalData.Clone(),
		Recipients:     make([]WrappedContentKey, len(e.Recipients)),
	}
	for i, r := range e.Recipients {
		out.Recipients[i] = WrappedContentKey{
			CredentialID:           r.CredentialID.Clone(),
			WrappingExchangePubkey: r.WrappingExchangePubkey.Clone(),
			WrappedContentKey:      r.WrappedContentKey.Clone(),
		}
	}
	return out
}
