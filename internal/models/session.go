package models

// Conversation steps. StepMain is the resting state; every flow walks a
// linear chain of these and ends back at StepMain.
const (
	StepMain = "main"

	StepAirtimeAmount    = "airtimeAmount"
	StepAirtimeRecipient = "airtimeRecipient"
	StepAirtimePayment   = "airtimePayment"

	StepDataCategory  = "dataCategory"
	StepDataList      = "dataList"
	StepDataRecipient = "dataRecip"
	StepDataPayment   = "dataPay"

	StepSMSCategory  = "smsCategory"
	StepSMSList      = "smsList"
	StepSMSRecipient = "smsRecip"
	StepSMSPayment   = "smsPay"

	StepReferralsMenu   = "myReferralsMenu"
	StepOldPIN          = "oldPin"
	StepSetNewPIN       = "setNewPin"
	StepWithdrawRequest = "withdrawRequest"
	StepWithdrawPIN     = "withdrawPin"
)

// WithdrawRequest is the pending payout stashed between the amount step
// and the PIN confirmation step.
type WithdrawRequest struct {
	Amount float64
	Mpesa  string
}

// Session is the per-identity conversation state. It is ephemeral: lost
// on restart and reset to main on "00"/"menu". PrevStep backs the "0"
// navigation token and always points one step back, not to an ancestor.
// Only the dispatch goroutine touches a Session; everything shared with
// other goroutines lives in the session store itself.
type Session struct {
	Step     string
	PrevStep string

	// Flow scratch fields, cleared when the owning flow finishes.
	AirtimeAmount    float64
	AirtimeRecipient string

	DataCategory  string
	DataBundle    *Package
	DataRecipient string

	SMSCategory  string
	SMSBundle    *Package
	SMSRecipient string

	Withdraw *WithdrawRequest
}
