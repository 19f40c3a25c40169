package gemini

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// SynthesizeSpeech asks the TTS model for an audio rendition of text and
// returns raw 16-bit little-endian PCM (mono, 24 kHz). It returns nil on
// any failure or when the service sends no audio back: synthesis is a
// soft feature and callers simply skip playback on a nil result.
func (c *Client) SynthesizeSpeech(ctx context.Context, text string) []byte {
	resp, err := c.ai.Models.GenerateContent(ctx, c.cfg.TTSModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
			},
		},
	})
	if err != nil {
		c.logger.Warn("speech synthesis failed", zap.Error(err))
		return nil
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}

	c.logger.Warn("speech synthesis returned no audio", zap.Int("text_len", len(text)))
	return nil
}
