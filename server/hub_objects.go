package server

import (
	"encoding/json"
	"fmt"

	"github.com/railoptima/railoptima/core"
)

func errUnknownObject(name string) error {
	return fmt.Errorf("unknown object %q", name)
}

// optimizeObject lets a connected client submit an optimize request over
// the socket instead of the REST surface, modeled on the teacher's
// simulationObject dispatch pattern.
type optimizeObject struct {
	env *Env
}

func (o *optimizeObject) dispatch(h *Hub, req Request, conn *connection) {
	switch req.Action {
	case "submit":
		var body core.Request
		if req.Params != nil {
			if err := json.Unmarshal(req.Params, &body); err != nil {
				conn.pushChan <- NewErrorResponse(req.ID, fmt.Errorf("bad params: %w", err))
				return
			}
		}
		result, err := o.env.optimize(body)
		if err != nil {
			conn.pushChan <- NewErrorResponse(req.ID, err)
			return
		}
		h.Broadcast("run-finished", result)
		data, _ := json.Marshal(result)
		conn.pushChan <- NewResponse(req.ID, data)
	default:
		conn.pushChan <- NewErrorResponse(req.ID, fmt.Errorf("unknown action %s/%s", req.Object, req.Action))
	}
}

var _ hubObject = (*optimizeObject)(nil)

// monitorObject replies to each request with the process-wide Performance
// Monitor's summary or its detailed records.
type monitorObject struct {
	env *Env
}

func (m *monitorObject) dispatch(h *Hub, req Request, conn *connection) {
	switch req.Action {
	case "summary":
		data, err := json.Marshal(m.env.Monitor.Summary())
		if err != nil {
			conn.pushChan <- NewErrorResponse(req.ID, err)
			return
		}
		conn.pushChan <- NewResponse(req.ID, data)
	case "detailed":
		data, err := json.Marshal(m.env.Monitor.Detailed())
		if err != nil {
			conn.pushChan <- NewErrorResponse(req.ID, err)
			return
		}
		conn.pushChan <- NewResponse(req.ID, data)
	default:
		conn.pushChan <- NewErrorResponse(req.ID, fmt.Errorf("unknown action %s/%s", req.Object, req.Action))
	}
}

var _ hubObject = (*monitorObject)(nil)
