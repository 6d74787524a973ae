package commsutil

import (
	"testing"
)

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{
			name:  "response array",
			input: []map[string]any{{"key": "1", "ok": 2}},
			want:  `[{"key":"1","ok":2}]`,
		},
		{
			name:  "nil",
			input: nil,
			want:  "null",
		},
		{
			name:    "channel is not serializable",
			input:   make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodePayload(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatal("commsutil:codec_test - expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("commsutil:codec_test - unexpected error: %v", err)
			}
			if got := string(data); got != tt.want {
				t.Errorf("commsutil:codec_test - EncodePayload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	for _, data := range []string{`{invalid}`, ""} {
		var target map[string]string
		if err := DecodePayload([]byte(data), &target); err == nil {
			t.Errorf("commsutil:codec_test - expected error decoding %q", data)
		}
	}
}

func TestEncodeError(t *testing.T) {
	data, err := EncodeError(map[string]string{"code": "RPC_CORE_INVALID_REQUEST", "message": "bad"})
	if err != nil {
		t.Fatalf("commsutil:codec_test - unexpected error: %v", err)
	}
	want := `{"err":{"code":"RPC_CORE_INVALID_REQUEST","message":"bad"}}`
	if string(data) != want {
		t.Errorf("commsutil:codec_test - EncodeError() = %s, want %s", data, want)
	}

	if _, err := EncodeError(make(chan int)); err == nil {
		t.Error("commsutil:codec_test - expected error for unserializable error value")
	}
}

func TestDecodeReply(t *testing.T) {
	type response struct {
		Key string `json:"key"`
	}

	tests := []struct {
		name    string
		data    string
		wantErr string
		wantLen int
		decErr  bool
	}{
		{"responses", `[{"key":"a"},{"key":"b"}]`, "", 2, false},
		{"empty batch", `[]`, "", 0, false},
		{"error envelope", `{"err":{"code":"X"}}`, `{"code":"X"}`, 0, false},
		{"object without err", `{"key":"a"}`, "", 0, true},
		{"garbage", `nope`, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []response
			rawErr, err := DecodeReply([]byte(tt.data), &out)
			if tt.decErr {
				if err == nil {
					t.Fatal("commsutil:codec_test - expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("commsutil:codec_test - unexpected error: %v", err)
			}
			if string(rawErr) != tt.wantErr {
				t.Errorf("commsutil:codec_test - err payload = %s, want %s", rawErr, tt.wantErr)
			}
			if len(out) != tt.wantLen {
				t.Errorf("commsutil:codec_test - decoded %d responses, want %d", len(out), tt.wantLen)
			}
		})
	}
}
