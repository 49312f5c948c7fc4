package trainnode

import (
	"bufio"
	"context"
	"net"

	"github.com/goccy/go-json"
)

// SendTask manda una tarea por TCP y espera una línea JSON de respuesta.
func SendTask(ctx context.Context, addr string, task *TrainTask) (*TrainResponse, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	enc := json.NewEncoder(conn)
	if err := enc.Encode(task); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bufio.NewReader(conn))
	var resp TrainResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
