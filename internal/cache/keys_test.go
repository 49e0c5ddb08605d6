package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "pipeline",
			objectType:  "transcript",
			identifier:  "abc123",
			paramsKey:   nil,
			expectedKey: "videoquiz:pipeline:transcript:abc123",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "pipeline",
			objectType:  "transcript",
			identifier:  "abc123",
			paramsKey:   []string{},
			expectedKey: "videoquiz:pipeline:transcript:abc123",
		},
		{
			name:        "with one paramsKey",
			serviceName: "pipeline",
			objectType:  "transcript",
			identifier:  "abc123",
			paramsKey:   []string{"tiny"},
			expectedKey: "videoquiz:pipeline:transcript:abc123:tiny",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "auth",
			objectType:  "revoked",
			identifier:  "01H",
			paramsKey:   []string{"param1", "param2", "param3"},
			expectedKey: "videoquiz:auth:revoked:01H:param1_param2_param3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestDomainKeys(t *testing.T) {
	if got := TranscriptKey("h"); got != "videoquiz:pipeline:transcript:h" {
		t.Errorf("TranscriptKey() = %v", got)
	}
	if got := RevokedTokenKey("j"); got != "videoquiz:auth:revoked:j" {
		t.Errorf("RevokedTokenKey() = %v", got)
	}
}
