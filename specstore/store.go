package specstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/opsframework/corescheduler/run"
)

const (
	specsRoot  = "Specs"
	runsRoot   = "Runs"
	typeKey    = "Type"
	dataKey    = "Data"
	specIDKey  = "spec-id"
	uninstKey  = "uninstalling"
)

// ErrLogicError tags a condition the content-addressing scheme
// guarantees should never happen absent a sha256 collision or direct
// tampering with the persisted store.
var ErrLogicError = errors.New("LOGIC_ERROR")

// Store is the Spec Store (spec.md §4.H): content-addressed spec
// persistence plus the back-reference recorded in each run's own
// state namespace.
type Store struct {
	persister Persister
}

// New builds a Store around persister.
func New(persister Persister) *Store {
	return &Store{persister: persister}
}

func runNamespace(runName string) string { return runsRoot + "/" + runName }
func specNamespace(specID string) string { return specsRoot + "/" + specID }

// Store persists data under a content-addressed specId derived from
// specType and sha256(data), then records that id against runName's
// own state namespace. A pre-existing spec at the computed id must be
// byte-identical in both fields, or the call fails LOGIC_ERROR.
func (s *Store) Store(runName string, data []byte, specType string) (string, error) {
	if specType == "" {
		return "", errors.New("CLIENT_INPUT: spec type must not be empty")
	}
	if data == nil {
		return "", errors.New("CLIENT_INPUT: spec data must not be nil")
	}

	sum := sha256.Sum256(data)
	specID := fmt.Sprintf("%s-%s", specType, hex.EncodeToString(sum[:]))
	ns := specNamespace(specID)

	existing, err := s.persister.BatchGet(ns, []string{typeKey, dataKey})
	if err != nil {
		return "", errors.Wrap(err, "read existing spec")
	}

	existingType, hasType := existing[typeKey]
	existingData, hasData := existing[dataKey]

	switch {
	case hasType && hasData:
		if string(existingType) != specType || !bytes.Equal(existingData, data) {
			return "", errors.Wrapf(ErrLogicError, "spec %s exists with different content (sha256 collision or tampering)", specID)
		}
	default:
		if err := s.persister.BatchPut(ns, map[string][]byte{
			typeKey: []byte(specType),
			dataKey: data,
		}); err != nil {
			return "", errors.Wrap(err, "write spec")
		}
	}

	if err := s.persister.BatchPut(runNamespace(runName), map[string][]byte{specIDKey: []byte(specID)}); err != nil {
		return "", errors.Wrap(err, "write spec-id back-reference")
	}
	return specID, nil
}

// GetSpecID returns the persisted back-reference for runName, or ok=false
// if none is recorded.
func (s *Store) GetSpecID(runName string) (specID string, ok bool, err error) {
	v, err := s.persister.Get(runNamespace(runName), specIDKey)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

// Recover enumerates every run namespace, reads its spec-id
// back-reference, then batch-reads the unique set of (Type, Data)
// records those ids point at. Every problem encountered — a missing
// spec-id, a missing Type or Data, or a type with no matching
// generator — is logged as it's found; if any occurred, the whole
// call fails LOGIC_ERROR only after every problem has been logged, so
// an operator sees the full picture in one restart's logs.
func (s *Store) Recover(generators run.Generators) ([]run.Run, error) {
	namespaces, err := s.persister.Namespaces(runsRoot + "/")
	if err != nil {
		return nil, errors.Wrap(err, "list run namespaces")
	}

	type pending struct {
		runName      string
		specID       string
		uninstalling bool
	}

	var toRecover []pending
	var failed bool

	for _, ns := range namespaces {
		runName := strings.TrimPrefix(ns, runsRoot+"/")

		specID, ok, err := s.GetSpecID(runName)
		if err != nil {
			log.WithError(err).WithField("run", runName).Error("recover: failed to read spec-id")
			failed = true
			continue
		}
		if !ok {
			log.WithField("run", runName).Error("recover: run namespace has no spec-id")
			failed = true
			continue
		}

		var uninstalling bool
		if v, gerr := s.persister.Get(ns, uninstKey); gerr == nil {
			uninstalling = len(v) > 0
		}

		toRecover = append(toRecover, pending{runName: runName, specID: specID, uninstalling: uninstalling})
	}

	uniqueSpecIDs := make(map[string]struct{})
	for _, p := range toRecover {
		uniqueSpecIDs[p.specID] = struct{}{}
	}

	specs := make(map[string]struct {
		specType string
		data     []byte
	})
	for specID := range uniqueSpecIDs {
		ns := specNamespace(specID)
		fields, err := s.persister.BatchGet(ns, []string{typeKey, dataKey})
		if err != nil {
			log.WithError(err).WithField("specId", specID).Error("recover: failed to read spec record")
			failed = true
			continue
		}
		specType, hasType := fields[typeKey]
		data, hasData := fields[dataKey]
		if !hasType {
			log.WithField("specId", specID).Error("recover: spec record missing Type")
			failed = true
			continue
		}
		if !hasData {
			log.WithField("specId", specID).Error("recover: spec record missing Data")
			failed = true
			continue
		}
		if _, known := generators[string(specType)]; !known {
			log.WithField("specId", specID).WithField("type", string(specType)).Error("recover: no generator registered for type")
			failed = true
			continue
		}
		specs[specID] = struct {
			specType string
			data     []byte
		}{specType: string(specType), data: data}
	}

	if failed {
		return nil, ErrLogicError
	}

	runs := make([]run.Run, 0, len(toRecover))
	for _, p := range toRecover {
		rec := specs[p.specID]
		generated, err := generators[rec.specType].Generate(p.runName, rec.data, p.uninstalling)
		if err != nil {
			return nil, errors.Wrapf(err, "generate run %s", p.runName)
		}
		runs = append(runs, generated)
	}
	return runs, nil
}
