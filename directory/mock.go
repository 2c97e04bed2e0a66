package directory

import "github.com/vocdoni/evoting-verifier/model"

// MockSetupDirectory lets a test override any single accessor while
// falling back to a wrapped real directory for everything else — the
// negative-test pattern (a mutated key, a missing file, a wrong id)
// without hand-maintaining a full fake snapshot per scenario.
type MockSetupDirectory struct {
	Fallback SetupDirectory

	EncryptionParametersPayloadFunc          func() (*model.EncryptionParametersPayload, error)
	SetupComponentPublicKeysPayloadFunc      func() (*model.SetupComponentPublicKeysPayload, error)
	ElectionEventContextPayloadFunc          func() (*model.ElectionEventContextPayload, error)
	ControlComponentPublicKeysPayloadsFunc   func() ([]Entry[*model.ControlComponentPublicKeysPayload], error)
	VCSDirectoriesFunc                       func() ([]VCSDirectory, error)
}

func (m *MockSetupDirectory) EncryptionParametersPayload() (*model.EncryptionParametersPayload, error) {
	if m.EncryptionParametersPayloadFunc != nil {
		return m.EncryptionParametersPayloadFunc()
	}
	return m.Fallback.EncryptionParametersPayload()
}

func (m *MockSetupDirectory) SetupComponentPublicKeysPayload() (*model.SetupComponentPublicKeysPayload, error) {
	if m.SetupComponentPublicKeysPayloadFunc != nil {
		return m.SetupComponentPublicKeysPayloadFunc()
	}
	return m.Fallback.SetupComponentPublicKeysPayload()
}

func (m *MockSetupDirectory) ElectionEventContextPayload() (*model.ElectionEventContextPayload, error) {
	if m.ElectionEventContextPayloadFunc != nil {
		return m.ElectionEventContextPayloadFunc()
	}
	return m.Fallback.ElectionEventContextPayload()
}

func (m *MockSetupDirectory) ControlComponentPublicKeysPayloads() ([]Entry[*model.ControlComponentPublicKeysPayload], error) {
	if m.ControlComponentPublicKeysPayloadsFunc != nil {
		return m.ControlComponentPublicKeysPayloadsFunc()
	}
	return m.Fallback.ControlComponentPublicKeysPayloads()
}

func (m *MockSetupDirectory) VCSDirectories() ([]VCSDirectory, error) {
	if m.VCSDirectoriesFunc != nil {
		return m.VCSDirectoriesFunc()
	}
	return m.Fallback.VCSDirectories()
}

// MockVCSDirectory is the VCSDirectory counterpart of MockSetupDirectory.
type MockVCSDirectory struct {
	Fallback VCSDirectory
	NameValue string

	SetupComponentTallyDataPayloadFunc        func() (*model.SetupComponentTallyDataPayload, error)
	SetupComponentVerificationDataPayloadsFunc func() ([]Entry[*model.SetupComponentVerificationDataPayload], error)
	ControlComponentCodeSharesPayloadsFunc    func() ([]Entry[*model.ControlComponentCodeSharesPayload], error)
}

func (m *MockVCSDirectory) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	if m.Fallback != nil {
		return m.Fallback.Name()
	}
	return ""
}

func (m *MockVCSDirectory) SetupComponentTallyDataPayload() (*model.SetupComponentTallyDataPayload, error) {
	if m.SetupComponentTallyDataPayloadFunc != nil {
		return m.SetupComponentTallyDataPayloadFunc()
	}
	return m.Fallback.SetupComponentTallyDataPayload()
}

func (m *MockVCSDirectory) SetupComponentVerificationDataPayloads() ([]Entry[*model.SetupComponentVerificationDataPayload], error) {
	if m.SetupComponentVerificationDataPayloadsFunc != nil {
		return m.SetupComponentVerificationDataPayloadsFunc()
	}
	return m.Fallback.SetupComponentVerificationDataPayloads()
}

func (m *MockVCSDirectory) ControlComponentCodeSharesPayloads() ([]Entry[*model.ControlComponentCodeSharesPayload], error) {
	if m.ControlComponentCodeSharesPayloadsFunc != nil {
		return m.ControlComponentCodeSharesPayloadsFunc()
	}
	return m.Fallback.ControlComponentCodeSharesPayloads()
}

// MockTallyDirectory is the TallyDirectory counterpart of
// MockSetupDirectory.
type MockTallyDirectory struct {
	Fallback TallyDirectory

	ECH0110Func               func() (*model.ECH0110, error)
	ECH0222Func               func() (*model.ECH0222, error)
	EVotingDecryptFunc        func() (*model.EVotingDecrypt, error)
	BallotBoxDirectoriesFunc  func() ([]BallotBoxDirectory, error)
}

func (m *MockTallyDirectory) ECH0110() (*model.ECH0110, error) {
	if m.ECH0110Func != nil {
		return m.ECH0110Func()
	}
	return m.Fallback.ECH0110()
}

func (m *MockTallyDirectory) ECH0222() (*model.ECH0222, error) {
	if m.ECH0222Func != nil {
		return m.ECH0222Func()
	}
	return m.Fallback.ECH0222()
}

func (m *MockTallyDirectory) EVotingDecrypt() (*model.EVotingDecrypt, error) {
	if m.EVotingDecryptFunc != nil {
		return m.EVotingDecryptFunc()
	}
	return m.Fallback.EVotingDecrypt()
}

func (m *MockTallyDirectory) BallotBoxDirectories() ([]BallotBoxDirectory, error) {
	if m.BallotBoxDirectoriesFunc != nil {
		return m.BallotBoxDirectoriesFunc()
	}
	return m.Fallback.BallotBoxDirectories()
}

// MockBallotBoxDirectory is the BallotBoxDirectory counterpart of
// MockSetupDirectory.
type MockBallotBoxDirectory struct {
	Fallback  BallotBoxDirectory
	NameValue string

	ControlComponentBallotBoxPayloadsFunc func() ([]Entry[*model.ControlComponentBallotBoxPayload], error)
	ControlComponentShufflePayloadsFunc   func() ([]Entry[*model.ControlComponentShufflePayload], error)
	TallyComponentShufflePayloadFunc      func() (*model.TallyComponentShufflePayload, error)
	TallyComponentVotesPayloadFunc        func() (*model.TallyComponentVotesPayload, error)
}

func (m *MockBallotBoxDirectory) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	if m.Fallback != nil {
		return m.Fallback.Name()
	}
	return ""
}

func (m *MockBallotBoxDirectory) ControlComponentBallotBoxPayloads() ([]Entry[*model.ControlComponentBallotBoxPayload], error) {
	if m.ControlComponentBallotBoxPayloadsFunc != nil {
		return m.ControlComponentBallotBoxPayloadsFunc()
	}
	return m.Fallback.ControlComponentBallotBoxPayloads()
}

func (m *MockBallotBoxDirectory) ControlComponentShufflePayloads() ([]Entry[*model.ControlComponentShufflePayload], error) {
	if m.ControlComponentShufflePayloadsFunc != nil {
		return m.ControlComponentShufflePayloadsFunc()
	}
	return m.Fallback.ControlComponentShufflePayloads()
}

func (m *MockBallotBoxDirectory) TallyComponentShufflePayload() (*model.TallyComponentShufflePayload, error) {
	if m.TallyComponentShufflePayloadFunc != nil {
		return m.TallyComponentShufflePayloadFunc()
	}
	return m.Fallback.TallyComponentShufflePayload()
}

func (m *MockBallotBoxDirectory) TallyComponentVotesPayload() (*model.TallyComponentVotesPayload, error) {
	if m.TallyComponentVotesPayloadFunc != nil {
		return m.TallyComponentVotesPayloadFunc()
	}
	return m.Fallback.TallyComponentVotesPayload()
}
