package keys

import (
	"encoding/json"
	"fmt"

	"github.com/prfvault/prfvault/internal/codec"
	kerrors "github.com/prfvault/prfvault/internal/errors"
)

// AdditionalData is the metadata bound to a wrapped private key as AES-GCM
// associated data. It is stored serialized inside WrappedKeypair so the
// exact bytes that were authenticated are kept.
type AdditionalData struct {
	CredentialID codec.Bytes `json:"credential_id"`
	Pubkey       codec.Bytes `json:"pubkey"`
	PRFSalt      codec.Bytes `json:"prf_salt"`
	HKDFSalt     codec.Bytes `json:"hkdf_salt"`
	HKDFInfo     codec.Bytes `json:"hkdf_info"`
}

// Marshal serializes the additional data.
func (a AdditionalData) Marshal() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding additional data: %v", kerrors.ErrSerialization, err)
	}
	return data, nil
}

// ParseAdditionalData decodes serialized additional data.
func ParseAdditionalData(data []byte) (*AdditionalData, error) {
	var a AdditionalData
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decoding additional data: %v", kerrors.ErrSerialization, err)
	}
	if len(a.CredentialID) == 0 {
		return nil, fmt.Errorf("%w: additional data has no credential id", kerrors.ErrSerialization)
	}
	if len(a.Pubkey) == 0 {
		return nil, fmt.Errorf("%w: additional data has no public key", kerrors.ErrSerialization)
	}
	return &a, nil
}

// WrappedKeypair is one authenticator's ECDH keypair with the private half
// encrypted under a key only that authenticator can re-derive.
type WrappedKeypair struct {
	WrappedPrivateKey codec.Bytes `json:"wrapped_private_key"`
	IV                codec.Bytes `json:"iv"`
	AdditionalData    codec.Bytes `json:"additional_data"`
	Nickname          *string     `json:"nickname"`
}

// Metadata parses the keypair's additional data.
func (w WrappedKeypair) Metadata() (*AdditionalData, error) {
	return ParseAdditionalData(w.AdditionalData)
}

// CredentialID returns the id of the credential the keypair is bound to, or
// nil when the additional data cannot be parsed.
func (w WrappedKeypair) CredentialID() []byte {
	meta, err := w.Metadata()
	if err != nil {
		return nil
	}
	return meta.CredentialID
}

// DisplayName returns the nickname, or an abbreviated credential id when
// the keypair has none.
func (w WrappedKeypair) DisplayName() string {
	if w.Nickname != nil && *w.Nickname != "" {
		return *w.Nickname
	}
	return codec.Abbrev(w.CredentialID(), 12)
}

// WithNickname returns a copy of w carrying name.
func (w WrappedKeypair) WithNickname(name string) WrappedKeypair {
	out := w.Clone()
	out.Nickname = &name
	return out
}

// Clone returns a deep copy of w.
func (w WrappedKeypair) Clone() WrappedKeypair {
	out := WrappedKeypair{
		WrappedPrivateKey: w.WrappedPrivateKey.Clone(),
		IV:                w.IV.Clone(),
		AdditionalData:    w.AdditionalData.Clone(),
	}
	if w.Nickname != nil {
		name := *w.Nickname
		out.Nickname = &name
	}
	return out
}
