package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vocdoni/evoting-verifier/model"
)

const (
	setupDirName = "setup"
	vcsDirName   = "verification_card_sets"
)

// SetupDirectory is the typed view of a snapshot's setup subtree: the
// fixed, once-per-event artifacts plus the per-node and per-VCS file
// groups. Implementations must cache: a payload is decoded at most once
// per run (§3 Lifecycle).
type SetupDirectory interface {
	EncryptionParametersPayload() (*model.EncryptionParametersPayload, error)
	SetupComponentPublicKeysPayload() (*model.SetupComponentPublicKeysPayload, error)
	ElectionEventContextPayload() (*model.ElectionEventContextPayload, error)
	ControlComponentPublicKeysPayloads() ([]Entry[*model.ControlComponentPublicKeysPayload], error)
	VCSDirectories() ([]VCSDirectory, error)
}

// VCSDirectory is the typed view of one verification-card-set subtree.
type VCSDirectory interface {
	Name() string
	SetupComponentTallyDataPayload() (*model.SetupComponentTallyDataPayload, error)
	SetupComponentVerificationDataPayloads() ([]Entry[*model.SetupComponentVerificationDataPayload], error)
	ControlComponentCodeSharesPayloads() ([]Entry[*model.ControlComponentCodeSharesPayload], error)
}

// OnDiskSetupDirectory reads the setup subtree of root ("<root>/setup").
type OnDiskSetupDirectory struct {
	location string

	once struct {
		params  sync.Once
		keys    sync.Once
		context sync.Once
		ccKeys  sync.Once
		vcs     sync.Once
	}
	params  *model.EncryptionParametersPayload
	paramsErr error
	keys    *model.SetupComponentPublicKeysPayload
	keysErr error
	context *model.ElectionEventContextPayload
	contextErr error
	ccKeys  []Entry[*model.ControlComponentPublicKeysPayload]
	ccKeysErr error
	vcs     []VCSDirectory
	vcsErr  error
}

// NewOnDiskSetupDirectory roots an OnDiskSetupDirectory at <root>/setup.
func NewOnDiskSetupDirectory(root string) *OnDiskSetupDirectory {
	return &OnDiskSetupDirectory{location: filepath.Join(root, setupDirName)}
}

func (d *OnDiskSetupDirectory) EncryptionParametersPayload() (*model.EncryptionParametersPayload, error) {
	d.once.params.Do(func() {
		d.params, d.paramsErr = readSingle(d.location, "encryptionParametersPayload.json", decodeJSON[model.EncryptionParametersPayload]())
	})
	return d.params, d.paramsErr
}

func (d *OnDiskSetupDirectory) SetupComponentPublicKeysPayload() (*model.SetupComponentPublicKeysPayload, error) {
	d.once.keys.Do(func() {
		d.keys, d.keysErr = readSingle(d.location, "setupComponentPublicKeysPayload.json", decodeJSON[model.SetupComponentPublicKeysPayload]())
	})
	return d.keys, d.keysErr
}

func (d *OnDiskSetupDirectory) ElectionEventContextPayload() (*model.ElectionEventContextPayload, error) {
	d.once.context.Do(func() {
		d.context, d.contextErr = readSingle(d.location, "electionEventContextPayload.json", decodeJSON[model.ElectionEventContextPayload]())
	})
	return d.context, d.contextErr
}

func (d *OnDiskSetupDirectory) ControlComponentPublicKeysPayloads() ([]Entry[*model.ControlComponentPublicKeysPayload], error) {
	d.once.ccKeys.Do(func() {
		g, err := NewFileGroup(d.location, "controlComponentPublicKeysPayload.{}.json", decodeJSON[model.ControlComponentPublicKeysPayload]())
		if err != nil {
			d.ccKeysErr = err
			return
		}
		d.ccKeys, d.ccKeysErr = g.All()
	})
	return d.ccKeys, d.ccKeysErr
}

func (d *OnDiskSetupDirectory) VCSDirectories() ([]VCSDirectory, error) {
	d.once.vcs.Do(func() {
		base := filepath.Join(d.location, vcsDirName)
		entries, err := os.ReadDir(base)
		if err != nil {
			if os.IsNotExist(err) {
				d.vcs = nil
				return
			}
			d.vcsErr = fmt.Errorf("%w: %v", ErrDirectory, err)
			return
		}
		var out []VCSDirectory
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			out = append(out, newOnDiskVCSDirectory(filepath.Join(base, e.Name()), e.Name()))
		}
		d.vcs = out
	})
	return d.vcs, d.vcsErr
}

type onDiskVCSDirectory struct {
	location string
	name     string

	once struct {
		tally       sync.Once
		verification sync.Once
		codeShares  sync.Once
	}
	tally       *model.SetupComponentTallyDataPayload
	tallyErr    error
	verification []Entry[*model.SetupComponentVerificationDataPayload]
	verificationErr error
	codeShares  []Entry[*model.ControlComponentCodeSharesPayload]
	codeSharesErr error
}

func newOnDiskVCSDirectory(location, name string) *onDiskVCSDirectory {
	return &onDiskVCSDirectory{location: location, name: name}
}

func (d *onDiskVCSDirectory) Name() string { return d.name }

func (d *onDiskVCSDirectory) SetupComponentTallyDataPayload() (*model.SetupComponentTallyDataPayload, error) {
	d.once.tally.Do(func() {
		d.tally, d.tallyErr = readSingle(d.location, "setupComponentTallyDataPayload.json", decodeJSON[model.SetupComponentTallyDataPayload]())
	})
	return d.tally, d.tallyErr
}

func (d *onDiskVCSDirectory) SetupComponentVerificationDataPayloads() ([]Entry[*model.SetupComponentVerificationDataPayload], error) {
	d.once.verification.Do(func() {
		g, err := NewFileGroup(d.location, "setupComponentVerificationDataPayload.{}.json", decodeJSON[model.SetupComponentVerificationDataPayload]())
		if err != nil {
			d.verificationErr = err
			return
		}
		d.verification, d.verificationErr = g.All()
	})
	return d.verification, d.verificationErr
}

func (d *onDiskVCSDirectory) ControlComponentCodeSharesPayloads() ([]Entry[*model.ControlComponentCodeSharesPayload], error) {
	d.once.codeShares.Do(func() {
		g, err := NewFileGroup(d.location, "controlComponentCodeSharesPayload.{}.json", decodeJSONArray[model.ControlComponentCodeSharesPayload]())
		if err != nil {
			d.codeSharesErr = err
			return
		}
		d.codeShares, d.codeSharesErr = g.All()
	})
	return d.codeShares, d.codeSharesErr
}

func readSingle[T any](dir, name string, decode func([]byte) (*T, error)) (*T, error) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectory, err)
	}
	return decode(raw)
}
