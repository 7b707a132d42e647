package client

import (
	"testing"

	"github.com/gear6io/plvclient/client/metrics"
	"github.com/gear6io/plvclient/pkg/errors"
	"github.com/gear6io/plvclient/pkg/protocol"
	"github.com/gear6io/plvclient/pkg/protocol/cvmat"
	"github.com/gear6io/plvclient/pkg/protocol/variant"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteFrameDispatchesValues(t *testing.T) {
	sink := &recordingSink{}
	rt := NewRouter(nil, sink, nil, testLogger(t))

	body := frameBody(protocol.MessageFrame, 7, func(e *variant.Encoder) int {
		e.Matrix(cvmat.Matrix{TypeFlags: cvmat.TypeFlags(cvmat.Depth8U, 4), Width: 1, Height: 1, Raw: []byte{1, 2, 3, 4}})
		e.String("pipeline running")
		e.Int(-3)
		e.UInt(3)
		e.Double(1.5)
		e.Bool(true)
		return 6
	})

	res := rt.Route(body)
	require.NoError(t, res.Err)
	assert.Equal(t, protocol.MessageFrame, res.Type)
	assert.Equal(t, int32(7), res.Serial)
	assert.True(t, res.HasSerial)
	assert.Equal(t, int32(6), res.ArgCount)
	assert.Equal(t, 6, res.Decoded)
	assert.Equal(t, protocol.EncodeAck(7), res.Ack)

	images := sink.Images()
	require.Len(t, images, 1)
	assert.Equal(t, uint32(0xff030201), images[0].ARGB(0, 0))
	assert.Equal(t, []string{"pipeline running"}, sink.Statuses())
}

func TestRouteShapeMismatchContinues(t *testing.T) {
	sink := &recordingSink{}
	rt := NewRouter(nil, sink, nil, testLogger(t))

	body := frameBody(protocol.MessageFrame, 1, func(e *variant.Encoder) int {
		e.Matrix(cvmat.Matrix{TypeFlags: cvmat.TypeFlags(cvmat.Depth8U, 3), Width: 2, Height: 2, Raw: make([]byte, 5)})
		e.String("still here")
		return 2
	})

	res := rt.Route(body)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Decoded)
	assert.Empty(t, sink.Images())
	assert.Equal(t, []string{"still here"}, sink.Statuses())
	assert.NotNil(t, res.Ack)
}

func TestRouteUnknownTagAbortsButAcks(t *testing.T) {
	sink := &recordingSink{}
	rt := NewRouter(nil, sink, nil, testLogger(t))

	body := frameBody(protocol.MessageFrame, 42, func(e *variant.Encoder) int {
		e.String("before")
		e.Header(protocol.TagBitmap)
		e.String("after")
		return 3
	})

	res := rt.Route(body)
	require.Error(t, res.Err)
	assert.True(t, errors.HasCode(res.Err, ErrProtocolCorrupt))
	assert.True(t, errors.HasCode(res.Err, variant.ErrUnsupportedTag))
	assert.Equal(t, "42", errors.GetContext(res.Err)["serial"])
	assert.Equal(t, 1, res.Decoded)
	assert.Equal(t, []string{"before"}, sink.Statuses())

	serial, err := protocol.DecodeAck(res.Ack)
	require.NoError(t, err)
	assert.Equal(t, int32(42), serial)
}

func TestRouteControlMessages(t *testing.T) {
	rt := NewRouter(nil, nil, nil, testLogger(t))

	for _, msgType := range []protocol.MessageType{protocol.MessageInit, protocol.MessageAck, 2, 99} {
		res := rt.Route(frameBody(msgType, 5, nil))
		require.NoError(t, res.Err, "type %d", msgType)
		assert.Equal(t, msgType, res.Type)
		assert.Equal(t, protocol.EncodeAck(5), res.Ack)
	}
}

func TestRouteShortHeaderHasNoAck(t *testing.T) {
	rt := NewRouter(nil, nil, nil, testLogger(t))

	res := rt.Route([]byte{0, 0, 0, 0, 0, 0, 0})
	require.Error(t, res.Err)
	assert.True(t, errors.HasCode(res.Err, ErrProtocolCorrupt))
	assert.False(t, res.HasSerial)
	assert.Nil(t, res.Ack)
}

func TestRouteMissingArgCountAcks(t *testing.T) {
	rt := NewRouter(nil, nil, nil, testLogger(t))

	res := rt.Route([]byte{0, 0, 0, 0, 0, 0, 0, 9})
	require.Error(t, res.Err)
	assert.True(t, errors.HasCode(res.Err, protocol.ErrShortRead))
	assert.Equal(t, protocol.EncodeAck(9), res.Ack)
}

func TestRouteNegativeArgCount(t *testing.T) {
	rt := NewRouter(nil, nil, nil, testLogger(t))

	w := protocol.NewWriter()
	w.WriteInt32(int32(protocol.MessageFrame))
	w.WriteInt32(3)
	w.WriteInt32(-1)

	res := rt.Route(w.Bytes())
	require.Error(t, res.Err)
	assert.True(t, errors.HasCode(res.Err, ErrProtocolCorrupt))
	assert.Equal(t, protocol.EncodeAck(3), res.Ack)
}

func TestRouteArgCountBeyondPayload(t *testing.T) {
	rt := NewRouter(nil, nil, nil, testLogger(t))

	body := frameBody(protocol.MessageFrame, 11, func(e *variant.Encoder) int {
		e.Int(1)
		return 2
	})

	res := rt.Route(body)
	require.Error(t, res.Err)
	assert.True(t, errors.HasCode(res.Err, variant.ErrCorrupt))
	assert.Equal(t, 1, res.Decoded)
	assert.Equal(t, protocol.EncodeAck(11), res.Ack)
}

func TestRouteAlwaysAcks(t *testing.T) {
	rt := NewRouter(nil, nil, nil, testLogger(t))

	var acks []byte
	for serial := int32(0); serial < 100; serial++ {
		body := frameBody(protocol.MessageFrame, serial, func(e *variant.Encoder) int {
			e.Int(serial)
			if serial%3 == 0 {
				e.Header(protocol.VariantTag(200))
				return 2
			}
			return 1
		})
		res := rt.Route(body)
		if serial%3 == 0 {
			require.Error(t, res.Err)
		} else {
			require.NoError(t, res.Err)
		}
		acks = append(acks, res.Ack...)
	}

	serials := ackSerials(t, acks)
	require.Len(t, serials, 100)
	for i, s := range serials {
		assert.Equal(t, int32(i), s)
	}
}

func TestRouteRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))
	rt := NewRouter(nil, nil, m, testLogger(t))

	rt.Route(frameBody(protocol.MessageFrame, 1, func(e *variant.Encoder) int {
		e.String("ok")
		e.Matrix(cvmat.Matrix{TypeFlags: cvmat.TypeFlags(cvmat.Depth16U, 1), Width: 1, Height: 1, Raw: []byte{0, 0}})
		return 2
	}))
	rt.Route(frameBody(protocol.MessageFrame, 2, func(e *variant.Encoder) int {
		e.Header(protocol.TagBitmap)
		return 1
	}))

	families, err := reg.Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 2.0, values["plvclient_frames_total"])
	assert.Equal(t, 2.0, values["plvclient_acks_total"])
	assert.Equal(t, 1.0, values["plvclient_corrupt_frames_total"])
	assert.Equal(t, 1.0, values["plvclient_matrix_rejects_total"])
	assert.Equal(t, 2.0, values["plvclient_values_total"])
}
