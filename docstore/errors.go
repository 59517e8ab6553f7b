package docstore

import "fmt"

type (
	// NotFound indicates that a key lookup returned zero documents.
	NotFound struct {
		Collection string
		Key        string
	}

	// Conflict indicates the underlying store rejected an insert,
	// usually because the generated document id already exists.
	Conflict struct {
		Collection string
		ID         string
	}

	// RevisionMismatch indicates an update carried a stale revision,
	// ie. the document changed since the caller read it. The caller
	// should reread and retry, the store never overwrites silently.
	RevisionMismatch struct {
		Collection string
		ID         string
		Rev        string
	}

	// InconsistentIndex indicates the secondary index returned more
	// documents than a unique key ever should. This is a store bug,
	// not a normal error path.
	InconsistentIndex struct {
		Collection string
		Key        string
		Rows       int
	}
)

func (n NotFound) Error() string {
	return fmt.Sprintf("no document with key %v in collection %v", n.Key, n.Collection)
}

func (c Conflict) Error() string {
	return fmt.Sprintf("document %v in collection %v conflicts with an existing document", c.ID, c.Collection)
}

func (r RevisionMismatch) Error() string {
	return fmt.Sprintf("document %v in collection %v changed since revision %v was read", r.ID, r.Collection, r.Rev)
}

func (i InconsistentIndex) Error() string {
	return fmt.Sprintf("key %v in collection %v matches %v documents, index is inconsistent", i.Key, i.Collection, i.Rows)
}
