package storage

import (
	"errors"
	"fmt"

	"github.com/vocdoni/modelpass/db"
	"github.com/vocdoni/modelpass/db/prefixeddb"
	"github.com/vocdoni/modelpass/log"
	"github.com/vocdoni/modelpass/types"
)

// SetCertificate stores a new attribution certificate and indexes it
// under its model id. The certificate must validate; the model does not
// need a stored passport, a certificate can arrive first.
func (s *Storage) SetCertificate(cert *types.AttributionCertificate) error {
	if cert == nil {
		return fmt.Errorf("nil certificate")
	}
	if err := cert.Validate(); err != nil {
		return fmt.Errorf("invalid certificate: %w", err)
	}
	certKey, err := certificateKey(cert.CertificateID)
	if err != nil {
		return err
	}
	modelKey, err := passportKey(cert.ModelID)
	if err != nil {
		return err
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	wTx := s.db.WriteTx()
	defer wTx.Discard()

	certificates := prefixeddb.NewPrefixedWriteTx(wTx, certificatePrefix)
	if _, err := certificates.Get(certKey); err == nil {
		return fmt.Errorf("certificate %s: %w", cert.CertificateID, ErrKeyAlreadyExists)
	}
	// Certificates embed JSON documents already, so they are stored as
	// JSON rather than CBOR-wrapped JSON.
	data, err := EncodeArtifact(cert, ArtifactEncodingJSON)
	if err != nil {
		return err
	}
	if err := certificates.Set(certKey, data); err != nil {
		return err
	}
	index := prefixeddb.NewPrefixedWriteTx(wTx, certModelIndexPrefix)
	if err := index.Set(indexKey(modelKey, certKey), nil); err != nil {
		return err
	}
	if err := wTx.Commit(); err != nil {
		return err
	}
	s.cache.Remove(cacheKey(certificatePrefix, certKey))
	return nil
}

// Certificate retrieves an attribution certificate by its UUID. It
// returns ErrNotFound when the certificate is not registered.
func (s *Storage) Certificate(certificateID string) (*types.AttributionCertificate, error) {
	key, err := certificateKey(certificateID)
	if err != nil {
		return nil, err
	}
	ck := cacheKey(certificatePrefix, key)
	if val, ok := s.cache.Get(ck); ok {
		if cert, ok := val.(*types.AttributionCertificate); ok {
			return cert, nil
		}
		log.Warnw("cache hit with unexpected type",
			"expected", "*types.AttributionCertificate", "got", fmt.Sprintf("%T", val))
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	cert := &types.AttributionCertificate{}
	if err := s.getArtifact(certificatePrefix, key, cert, ArtifactEncodingJSON); err != nil {
		return nil, err
	}
	s.cache.Add(ck, cert)
	return cert, nil
}

// ListCertificates returns every stored certificate, ordered by id.
func (s *Storage) ListCertificates() ([]*types.AttributionCertificate, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	keys, err := s.listArtifacts(certificatePrefix)
	if err != nil {
		return nil, err
	}
	certificates := make([]*types.AttributionCertificate, 0, len(keys))
	for _, key := range keys {
		cert := &types.AttributionCertificate{}
		if err := s.getArtifact(certificatePrefix, key, cert, ArtifactEncodingJSON); err != nil {
			return nil, fmt.Errorf("could not load certificate %x: %w", key, err)
		}
		certificates = append(certificates, cert)
	}
	return certificates, nil
}

// CertificatesByModel returns the ids of the certificates indexed under a
// model identity hash. A model without certificates yields an empty list,
// not an error.
func (s *Storage) CertificatesByModel(modelID string) ([]string, error) {
	modelKey, err := passportKey(modelID)
	if err != nil {
		return nil, err
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	ids := []string{}
	var walkErr error
	if err := prefixeddb.NewPrefixedReader(s.db, certModelIndexPrefix).Iterate(modelKey, func(k, _ []byte) bool {
		id, err := certificateIDFromKey(k)
		if err != nil {
			walkErr = err
			return false
		}
		ids = append(ids, id)
		return true
	}); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, walkErr
	}
	return ids, nil
}

// CertificateExists reports whether a certificate id is registered,
// without decoding the record.
func (s *Storage) CertificateExists(certificateID string) (bool, error) {
	key, err := certificateKey(certificateID)
	if err != nil {
		return false, err
	}

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if _, err := prefixeddb.NewPrefixedReader(s.db, certificatePrefix).Get(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
