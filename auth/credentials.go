package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackin-rest/jackin/docstore"
)

const credentialCollection = "credentials"

type (
	// Credential is one registered principal. ID and Rev come from the
	// store, updates must carry the Rev that was read.
	Credential struct {
		ID     string `json:"-"`
		Rev    string `json:"-"`
		Email  string `json:"email"`
		Secret string `json:"secret"`
	}

	// Credentials persists Credential records keyed by email.
	Credentials struct {
		store *docstore.Store
	}
)

func NewCredentials(store *docstore.Store) *Credentials {
	return &Credentials{store: store}
}

// Setup creates the credential collection and its email index. Idempotent,
// must run once before the store is used.
func (c *Credentials) Setup(ctx context.Context) error {
	return c.store.EnsureCollection(ctx, credentialCollection)
}

// FindByEmail looks up the credential for an email, treating the address
// as case-sensitive. A miss fails with docstore.NotFound.
func (c *Credentials) FindByEmail(ctx context.Context, email string) (Credential, error) {
	doc, err := c.store.FindByKey(ctx, credentialCollection, email)
	if err != nil {
		return Credential{}, err
	}
	return credentialFromDoc(doc)
}

func (c *Credentials) Insert(ctx context.Context, cred Credential) (Credential, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return Credential{}, fmt.Errorf("unable to serialize credential, cause %w", err)
	}
	doc, err := c.store.Insert(ctx, credentialCollection, cred.Email, body)
	if err != nil {
		return Credential{}, err
	}
	cred.ID, cred.Rev = doc.ID, doc.Rev
	return cred, nil
}

// Update rewrites the stored credential, advancing its revision. A stale
// Rev fails with docstore.RevisionMismatch and the caller must reread.
func (c *Credentials) Update(ctx context.Context, cred Credential) (Credential, error) {
	body, err := json.Marshal(cred)
	if err != nil {
		return Credential{}, fmt.Errorf("unable to serialize credential, cause %w", err)
	}
	doc, err := c.store.Update(ctx, credentialCollection, docstore.Document{
		ID:   cred.ID,
		Rev:  cred.Rev,
		Key:  cred.Email,
		Body: body,
	})
	if err != nil {
		return Credential{}, err
	}
	cred.Rev = doc.Rev
	return cred, nil
}

func credentialFromDoc(doc docstore.Document) (Credential, error) {
	var cred Credential
	if err := json.Unmarshal(doc.Body, &cred); err != nil {
		return Credential{}, fmt.Errorf("unable to decode credential %v, cause %w", doc.ID, err)
	}
	cred.ID, cred.Rev = doc.ID, doc.Rev
	return cred, nil
}
