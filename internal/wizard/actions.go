package wizard

// ActionType names an action the machine understands.
type ActionType string

const (
	ActionRestoreState     ActionType = "RESTORE_STATE"
	ActionNextStep         ActionType = "NEXT_STEP"
	ActionPrevStep         ActionType = "PREV_STEP"
	ActionGoToStep         ActionType = "GO_TO_STEP"
	ActionSetWallet        ActionType = "SET_WALLET"
	ActionDisconnectWallet ActionType = "DISCONNECT_WALLET"
	ActionSetJurisdiction  ActionType = "SET_JURISDICTION"
	ActionToggleConsent    ActionType = "TOGGLE_CONSENT"
	ActionUploadFile       ActionType = "UPLOAD_FILE"
	ActionRemoveFile       ActionType = "REMOVE_FILE"
	ActionSetExtraction    ActionType = "SET_EXTRACTION"
	ActionUpdateDraftField ActionType = "UPDATE_DRAFT_FIELD"
	ActionConfirmProfile   ActionType = "CONFIRM_PROFILE"
	ActionSetVerification  ActionType = "SET_VERIFICATION"
	ActionSetCompliance    ActionType = "SET_COMPLIANCE"
	ActionSetNFT           ActionType = "SET_NFT"
	ActionLinkDiscord      ActionType = "LINK_DISCORD"
	ActionEnableDemoMode   ActionType = "ENABLE_DEMO_MODE"
)

// Action is an input to Machine.Reduce.
type Action interface {
	Type() ActionType
}

type RestoreState struct{ Saved State }

type NextStep struct{}

type PrevStep struct{}

type GoToStep struct{ Step Step }

type SetWallet struct{ Address, Name string }

type DisconnectWallet struct{}

type SetJurisdiction struct{ Jurisdiction string }

type ToggleConsent struct{ Consent ConsentType }

type UploadFile struct{ File UploadedFile }

type RemoveFile struct{ FileID string }

type SetExtraction struct{ Result ExtractionResult }

type UpdateDraftField struct{ Key, Value string }

type ConfirmProfile struct{}

type SetVerification struct{ Gates []VerificationGate }

type SetCompliance struct{ Gates []ComplianceGate }

type SetNFT struct{ Result NFTMintResult }

type LinkDiscord struct{ Username string }

type EnableDemoMode struct{}

func (RestoreState) Type() ActionType     { return ActionRestoreState }
func (NextStep) Type() ActionType         { return ActionNextStep }
func (PrevStep) Type() ActionType         { return ActionPrevStep }
func (GoToStep) Type() ActionType         { return ActionGoToStep }
func (SetWallet) Type() ActionType        { return ActionSetWallet }
func (DisconnectWallet) Type() ActionType { return ActionDisconnectWallet }
func (SetJurisdiction) Type() ActionType  { return ActionSetJurisdiction }
func (ToggleConsent) Type() ActionType    { return ActionToggleConsent }
func (UploadFile) Type() ActionType       { return ActionUploadFile }
func (RemoveFile) Type() ActionType       { return ActionRemoveFile }
func (SetExtraction) Type() ActionType    { return ActionSetExtraction }
func (UpdateDraftField) Type() ActionType { return ActionUpdateDraftField }
func (ConfirmProfile) Type() ActionType   { return ActionConfirmProfile }
func (SetVerification) Type() ActionType  { return ActionSetVerification }
func (SetCompliance) Type() ActionType    { return ActionSetCompliance }
func (SetNFT) Type() ActionType           { return ActionSetNFT }
func (LinkDiscord) Type() ActionType      { return ActionLinkDiscord }
func (EnableDemoMode) Type() ActionType   { return ActionEnableDemoMode }
