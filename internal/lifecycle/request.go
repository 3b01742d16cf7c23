package lifecycle

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/cftops/cftctl/internal/outcome"
)

// Request is the full parameter set of one invocation.
type Request struct {
	State      TargetState   `json:"state"`
	IDTU       string        `json:"idtu"`
	IDA        string        `json:"ida"`
	Direction  cft.Direction `json:"direction"`
	Partner    string        `json:"partner"`
	IDF        string        `json:"idf"`
	APITimeout int           `json:"api_timeout"`
	Filename   string        `json:"filename"`
	Parm       string        `json:"parm"`
	IDM        string        `json:"idm"`
	Msg        string        `json:"msg"`
}

const (
	exclusiveMsg     = "cannot be combined with idm or msg"
	eitherMsgOrFile  = "one of msg or filename is required"
	msgExcludesFile  = "msg and filename are mutually exclusive"
	requiredWithDir  = "is required when direction is set"
	requiredWithIDM  = "is required when idm is set"
	requiredToCreate = "is required to create a transfer"
)

// Validate checks which parameters the target state requires or forbids.
// It never touches the network.
func (r Request) Validate() error {
	states := make([]any, 0, len(States))
	for _, s := range States {
		states = append(states, s)
	}

	present := r.State == Present
	file := r.Filename != ""
	message := r.Msg != ""
	directed := r.Direction != ""
	messaging := r.IDM != "" || message

	err := validation.ValidateStruct(&r,
		validation.Field(&r.State, validation.Required, validation.In(states...)),
		validation.Field(&r.IDTU,
			validation.When(r.State.addressesTransfer(), validation.Required),
		),
		validation.Field(&r.Direction,
			validation.In(cft.DirectionSend, cft.DirectionReceive),
			validation.When(present && file, validation.Required.Error(requiredToCreate)),
			validation.When(messaging, validation.Empty.Error(exclusiveMsg)),
		),
		validation.Field(&r.Partner,
			validation.When(present, validation.Required.Error(requiredToCreate)),
			validation.When(directed, validation.Required.Error(requiredWithDir)),
		),
		validation.Field(&r.IDF,
			validation.When(present && file, validation.Required.Error(requiredToCreate)),
			validation.When(directed, validation.Required.Error(requiredWithDir)),
			validation.When(messaging, validation.Empty.Error(exclusiveMsg)),
		),
		validation.Field(&r.Filename,
			validation.When(present && !message, validation.Required.Error(eitherMsgOrFile)),
			validation.When(directed, validation.Required.Error(requiredWithDir)),
			validation.When(messaging, validation.Empty.Error(msgExcludesFile)),
		),
		validation.Field(&r.IDM,
			validation.When(r.State.acknowledges(), validation.Required),
		),
		validation.Field(&r.Msg,
			validation.When(present && !file, validation.Required.Error(eitherMsgOrFile)),
			validation.When(r.IDM != "", validation.Required.Error(requiredWithIDM)),
			validation.When(r.State.acknowledges(), validation.Required),
		),
		validation.Field(&r.APITimeout, validation.Min(0)),
	)
	if err != nil {
		return &outcome.ValidationError{Err: err}
	}
	return nil
}
