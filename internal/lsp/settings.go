package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logf("ignoring malformed settings: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := settings.Pytutor.MaxDiagnostics; v != nil && *v > 0 {
		s.maxDiagnostics = *v
	}
	if settings.Pytutor.Trace != nil {
		s.traceLSP = *settings.Pytutor.Trace
	}
}
