package transport

import (
	"encoding/json"

	"github.com/branehq/brane/braneerr"
)

// Request is a single JSON-RPC 2.0 request frame.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func newRequest(id int64, method string, params []interface{}) Request {
	if params == nil {
		params = []interface{}{}
	}
	return Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// rawFrame is used to sniff an incoming message before deciding whether it
// is a response (carries "id") or a subscription notification (carries
// "method":"eth_subscription").
type rawFrame struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Params json.RawMessage `json:"params"`
}

// Response is a decoded JSON-RPC response correlated to a request id.
type Response struct {
	ID     int64
	Result json.RawMessage
	Err    *RPCError
}

// notificationParams is the "params" shape of an eth_subscription notification.
type notificationParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// frameKind distinguishes a decoded incoming frame.
type frameKind int

const (
	frameResponse frameKind = iota
	frameNotification
)

type decodedFrame struct {
	kind         frameKind
	response     Response
	subID        string
	notifPayload json.RawMessage
}

// decodeFrame parses one inbound message. A malformed frame never panics:
// it yields a ProtocolError and the caller decides whether to keep the
// connection alive (spec requires unknown shapes not tear down the socket
// on a single bad frame).
func decodeFrame(raw []byte) (decodedFrame, error) {
	var rf rawFrame
	if err := json.Unmarshal(raw, &rf); err != nil {
		return decodedFrame{}, braneerr.ProtocolError("malformed JSON-RPC frame: " + err.Error())
	}

	if rf.ID != nil {
		return decodedFrame{
			kind: frameResponse,
			response: Response{
				ID:     *rf.ID,
				Result: rf.Result,
				Err:    rf.Error,
			},
		}, nil
	}

	if rf.Method == "eth_subscription" {
		var np notificationParams
		if err := json.Unmarshal(rf.Params, &np); err != nil {
			return decodedFrame{}, braneerr.ProtocolError("malformed subscription notification: " + err.Error())
		}
		return decodedFrame{
			kind:         frameNotification,
			subID:        np.Subscription,
			notifPayload: np.Result,
		}, nil
	}

	return decodedFrame{}, braneerr.ProtocolError("unrecognized frame shape")
}
