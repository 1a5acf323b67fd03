package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vocdoni/modelpass/db"
	"github.com/vocdoni/modelpass/db/prefixeddb"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/types"
)

// SetPassport stores a new passport. The passport must validate and its
// model identity must not already be registered, use DeletePassport first
// to replace one.
func (s *Storage) SetPassport(p *types.Passport) error {
	if p == nil {
		return fmt.Errorf("nil passport")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid passport: %w", err)
	}
	key, err := passportKey(p.ModelIdentityHash)
	if err != nil {
		return err
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	existing := &types.Passport{}
	if err := s.getArtifact(passportPrefix, key, existing); err == nil {
		return fmt.Errorf("passport %s: %w", p.ShortID(), ErrKeyAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("could not check passport existence: %w", err)
	}
	if err := s.setArtifact(passportPrefix, key, p); err != nil {
		return err
	}
	s.cache.Remove(cacheKey(passportPrefix, key))
	return nil
}

// Passport retrieves a passport by model identity hash. It returns
// ErrNotFound when the model is not registered.
func (s *Storage) Passport(modelID string) (*types.Passport, error) {
	key, err := passportKey(modelID)
	if err != nil {
		return nil, err
	}
	ck := cacheKey(passportPrefix, key)
	if val, ok := s.cache.Get(ck); ok {
		if p, ok := val.(*types.Passport); ok {
			return p, nil
		}
		log.Warnw("cache hit with unexpected type", "expected", "*types.Passport", "got", fmt.Sprintf("%T", val))
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	p := &types.Passport{}
	if err := s.getArtifact(passportPrefix, key, p); err != nil {
		return nil, err
	}
	s.cache.Add(ck, p)
	return p, nil
}

// ListPassports returns every stored passport, ordered by model id.
func (s *Storage) ListPassports() ([]*types.Passport, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	keys, err := s.listArtifacts(passportPrefix)
	if err != nil {
		return nil, err
	}
	passports := make([]*types.Passport, 0, len(keys))
	for _, key := range keys {
		p := &types.Passport{}
		if err := s.getArtifact(passportPrefix, key, p); err != nil {
			return nil, fmt.Errorf("could not load passport %x: %w", key, err)
		}
		passports = append(passports, p)
	}
	return passports, nil
}

// DeletePassport removes a passport together with its certificates and
// their index entries, in a single transaction. It returns ErrNotFound
// when the model is not registered.
func (s *Storage) DeletePassport(modelID string) error {
	key, err := passportKey(modelID)
	if err != nil {
		return err
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	passports := prefixeddb.NewPrefixedWriteTx(wTx, passportPrefix)
	if _, err := passports.Get(key); errors.Is(err, db.ErrKeyNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	var certKeys [][]byte
	index := prefixeddb.NewPrefixedWriteTx(wTx, certModelIndexPrefix)
	if err := index.Iterate(key, func(k, _ []byte) bool {
		certKeys = append(certKeys, bytes.Clone(k))
		return true
	}); err != nil {
		return fmt.Errorf("could not walk certificate index: %w", err)
	}

	certificates := prefixeddb.NewPrefixedWriteTx(wTx, certificatePrefix)
	for _, ck := range certKeys {
		if err := certificates.Delete(ck); err != nil {
			return err
		}
		if err := index.Delete(indexKey(key, ck)); err != nil {
			return err
		}
	}
	if err := passports.Delete(key); err != nil {
		return err
	}
	if err := wTx.Commit(); err != nil {
		return err
	}

	s.cache.Remove(cacheKey(passportPrefix, key))
	for _, ck := range certKeys {
		s.cache.Remove(cacheKey(certificatePrefix, ck))
	}
	return nil
}
