package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vocdoni/evoting-verifier/model"
)

const (
	tallyDirName      = "tally"
	ballotBoxesDirName = "ballot_boxes"
)

// TallyDirectory is the typed view of a snapshot's tally subtree: the
// three canton XML reports plus the per-ballot-box directories.
type TallyDirectory interface {
	ECH0110() (*model.ECH0110, error)
	ECH0222() (*model.ECH0222, error)
	EVotingDecrypt() (*model.EVotingDecrypt, error)
	BallotBoxDirectories() ([]BallotBoxDirectory, error)
}

// BallotBoxDirectory is the typed view of one ballot box's subtree.
type BallotBoxDirectory interface {
	Name() string
	ControlComponentBallotBoxPayloads() ([]Entry[*model.ControlComponentBallotBoxPayload], error)
	ControlComponentShufflePayloads() ([]Entry[*model.ControlComponentShufflePayload], error)
	TallyComponentShufflePayload() (*model.TallyComponentShufflePayload, error)
	TallyComponentVotesPayload() (*model.TallyComponentVotesPayload, error)
}

// OnDiskTallyDirectory reads the tally subtree of root ("<root>/tally").
type OnDiskTallyDirectory struct {
	location string

	once struct {
		ech0110 sync.Once
		ech0222 sync.Once
		decrypt sync.Once
		boxes   sync.Once
	}
	ech0110    *model.ECH0110
	ech0110Err error
	ech0222    *model.ECH0222
	ech0222Err error
	decrypt    *model.EVotingDecrypt
	decryptErr error
	boxes      []BallotBoxDirectory
	boxesErr   error
}

// NewOnDiskTallyDirectory roots an OnDiskTallyDirectory at <root>/tally.
func NewOnDiskTallyDirectory(root string) *OnDiskTallyDirectory {
	return &OnDiskTallyDirectory{location: filepath.Join(root, tallyDirName)}
}

func (d *OnDiskTallyDirectory) ECH0110() (*model.ECH0110, error) {
	d.once.ech0110.Do(func() {
		d.ech0110, d.ech0110Err = readXML(d.location, "eCH-0110.xml", model.NewECH0110)
	})
	return d.ech0110, d.ech0110Err
}

func (d *OnDiskTallyDirectory) ECH0222() (*model.ECH0222, error) {
	d.once.ech0222.Do(func() {
		d.ech0222, d.ech0222Err = readXML(d.location, "eCH-0222.xml", model.NewECH0222)
	})
	return d.ech0222, d.ech0222Err
}

func (d *OnDiskTallyDirectory) EVotingDecrypt() (*model.EVotingDecrypt, error) {
	d.once.decrypt.Do(func() {
		d.decrypt, d.decryptErr = readXML(d.location, "evoting-decrypt.xml", model.NewEVotingDecrypt)
	})
	return d.decrypt, d.decryptErr
}

func (d *OnDiskTallyDirectory) BallotBoxDirectories() ([]BallotBoxDirectory, error) {
	d.once.boxes.Do(func() {
		base := filepath.Join(d.location, ballotBoxesDirName)
		entries, err := os.ReadDir(base)
		if err != nil {
			if os.IsNotExist(err) {
				d.boxes = nil
				return
			}
			d.boxesErr = fmt.Errorf("%w: %v", ErrDirectory, err)
			return
		}
		var out []BallotBoxDirectory
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			out = append(out, newOnDiskBallotBoxDirectory(filepath.Join(base, e.Name()), e.Name()))
		}
		d.boxes = out
	})
	return d.boxes, d.boxesErr
}

type onDiskBallotBoxDirectory struct {
	location string
	name     string

	once struct {
		ccBallotBox sync.Once
		ccShuffle   sync.Once
		tcShuffle   sync.Once
		tcVotes     sync.Once
	}
	ccBallotBox    []Entry[*model.ControlComponentBallotBoxPayload]
	ccBallotBoxErr error
	ccShuffle      []Entry[*model.ControlComponentShufflePayload]
	ccShuffleErr   error
	tcShuffle      *model.TallyComponentShufflePayload
	tcShuffleErr   error
	tcVotes        *model.TallyComponentVotesPayload
	tcVotesErr     error
}

func newOnDiskBallotBoxDirectory(location, name string) *onDiskBallotBoxDirectory {
	return &onDiskBallotBoxDirectory{location: location, name: name}
}

func (d *onDiskBallotBoxDirectory) Name() string { return d.name }

func (d *onDiskBallotBoxDirectory) ControlComponentBallotBoxPayloads() ([]Entry[*model.ControlComponentBallotBoxPayload], error) {
	d.once.ccBallotBox.Do(func() {
		g, err := NewFileGroup(d.location, "controlComponentBallotBoxPayload.{}.json", decodeJSON[model.ControlComponentBallotBoxPayload]())
		if err != nil {
			d.ccBallotBoxErr = err
			return
		}
		d.ccBallotBox, d.ccBallotBoxErr = g.All()
	})
	return d.ccBallotBox, d.ccBallotBoxErr
}

func (d *onDiskBallotBoxDirectory) ControlComponentShufflePayloads() ([]Entry[*model.ControlComponentShufflePayload], error) {
	d.once.ccShuffle.Do(func() {
		g, err := NewFileGroup(d.location, "controlComponentShufflePayload.{}.json", decodeJSON[model.ControlComponentShufflePayload]())
		if err != nil {
			d.ccShuffleErr = err
			return
		}
		d.ccShuffle, d.ccShuffleErr = g.All()
	})
	return d.ccShuffle, d.ccShuffleErr
}

func (d *onDiskBallotBoxDirectory) TallyComponentShufflePayload() (*model.TallyComponentShufflePayload, error) {
	d.once.tcShuffle.Do(func() {
		d.tcShuffle, d.tcShuffleErr = readSingle(d.location, "tallyComponentShufflePayload.json", decodeJSON[model.TallyComponentShufflePayload]())
	})
	return d.tcShuffle, d.tcShuffleErr
}

func (d *onDiskBallotBoxDirectory) TallyComponentVotesPayload() (*model.TallyComponentVotesPayload, error) {
	d.once.tcVotes.Do(func() {
		d.tcVotes, d.tcVotesErr = readSingle(d.location, "tallyComponentVotesPayload.json", decodeJSON[model.TallyComponentVotesPayload]())
	})
	return d.tcVotes, d.tcVotesErr
}

func readXML[T any](dir, name string, parse func([]byte) (*T, error)) (*T, error) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrDirectory, err)
	}
	return parse(raw)
}
