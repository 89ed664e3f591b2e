package store

import (
	"encoding/json"
	"time"

	"dario.cat/mergo"
	"github.com/pkg/errors"

	"github.com/openpinpoint/analytics-service/internal/models"
)

// toDoc reduces an endpoint to its JSON object form. Fields the client left
// unset disappear here, so a sparse sync payload only touches what it names.
func toDoc(ep models.Endpoint) (map[string]interface{}, error) {
	raw, err := json.Marshal(ep)
	if err != nil {
		return nil, errors.Wrap(err, "marshal endpoint")
	}
	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshal endpoint doc")
	}
	return doc, nil
}

func fromDoc(doc map[string]interface{}) (models.Endpoint, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return models.Endpoint{}, errors.Wrap(err, "marshal endpoint doc")
	}
	var ep models.Endpoint
	if err := json.Unmarshal(raw, &ep); err != nil {
		return models.Endpoint{}, errors.Wrap(err, "unmarshal endpoint")
	}
	return ep, nil
}

// applyUpsert is the create-vs-update branch shared by every backend.
//
// An absent current record (no Id) makes this a create: incoming is persisted
// verbatim plus the assigned Id, CreationDate and CohortId. Otherwise incoming
// is deep-merged over current with rightmost-wins scalars and whole-array
// replacement; repeated syncs therefore never grow array fields. Id,
// CreationDate and CohortId are re-stamped from current so no payload can
// rewrite them. EffectiveDate advances on every write.
func applyUpsert(current, incoming models.Endpoint, id string, now time.Time, cohort func() int) (models.Endpoint, error) {
	stamp := now.UTC().Format(time.RFC3339)

	if current.Id == "" {
		incoming.Id = id
		incoming.CreationDate = stamp
		incoming.EffectiveDate = stamp
		incoming.CohortId = cohort()
		return incoming, nil
	}

	dst, err := toDoc(current)
	if err != nil {
		return models.Endpoint{}, err
	}
	src, err := toDoc(incoming)
	if err != nil {
		return models.Endpoint{}, err
	}
	// WithOverride merges nested objects key by key and replaces any
	// slice-valued field wholesale, never element-wise.
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return models.Endpoint{}, errors.Wrap(err, "merge endpoint")
	}

	merged, err := fromDoc(dst)
	if err != nil {
		return models.Endpoint{}, err
	}
	merged.Id = current.Id
	merged.CreationDate = current.CreationDate
	merged.CohortId = current.CohortId
	merged.EffectiveDate = stamp
	return merged, nil
}
