package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprcaption/internal/config"
	"github.com/leonardotrapani/hyprcaption/internal/language"
)

// editRecognizer picks the speech source, then asks for the OpenAI and
// recording settings when audio is transcribed locally.
func editRecognizer(cfg *config.Config) error {
	source := cfg.Recognizer.Source

	sourceOptions := []huh.Option[string]{
		huh.NewOption("stdin - read hypotheses piped from another recognizer", config.SourceStdin),
		huh.NewOption("OpenAI - record the microphone and transcribe with Whisper", config.SourceOpenAI),
		huh.NewOption("None - captions only from 'hyprcaption say/live'", config.SourceNone),
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Recognizer Source").
				Options(sourceOptions...).
				Value(&source),
		),
	).WithTheme(getTheme()).Run()
	if err != nil {
		return err
	}
	cfg.Recognizer.Source = source

	if source != config.SourceOpenAI {
		return nil
	}
	if err := editOpenAI(cfg); err != nil {
		return err
	}
	return editRecording(cfg)
}

func editOpenAI(cfg *config.Config) error {
	apiKey := cfg.Recognizer.APIKey
	model := cfg.Recognizer.Model
	lang := cfg.Recognizer.Language
	chunk := cfg.Recognizer.Chunk.String()

	languageOptions := []huh.Option[string]{huh.NewOption(language.Label(""), "")}
	for _, code := range language.Codes() {
		languageOptions = append(languageOptions, huh.NewOption(language.Label(code), code))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API Key").
				Description("Leave empty to use OPENAI_API_KEY. Current: "+maskAPIKey(apiKey)).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewInput().
				Title("Model").
				Placeholder("whisper-1").
				Value(&model).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("model is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Chunk Length").
				Description("Audio per transcription request. Shorter = faster captions, more requests.").
				Placeholder("4s").
				Value(&chunk).
				Validate(validateDuration),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Language").
				Options(languageOptions...).
				Height(10).
				Value(&lang).
				Validate(validateLanguage),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recognizer.APIKey = apiKey
	cfg.Recognizer.Model = model
	cfg.Recognizer.Language = lang
	cfg.Recognizer.Chunk = parseDuration(chunk)
	return nil
}

func editRecording(cfg *config.Config) error {
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	channels := strconv.Itoa(cfg.Recording.Channels)
	device := cfg.Recording.Device
	bufferSize := strconv.Itoa(cfg.Recording.BufferSize)
	channelBufferSize := strconv.Itoa(cfg.Recording.ChannelBufferSize)

	channelOptions := []huh.Option[string]{
		huh.NewOption("1 (Mono) - Recommended", "1"),
		huh.NewOption("2 (Stereo)", "2"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample Rate (Hz)").
				Description("Audio sample rate. 16000 is optimal for speech recognition.").
				Placeholder("16000").
				Value(&sampleRate).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("Channels").
				Options(channelOptions...).
				Value(&channels),
			huh.NewInput().
				Title("Device").
				Description("PipeWire device name. Empty = default microphone.").
				Placeholder("(default)").
				Value(&device),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Buffer Size (bytes)").
				Description("Internal buffer size. Larger = less CPU, more latency.").
				Placeholder("8192").
				Value(&bufferSize).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Channel Buffer Size").
				Description("Number of audio frames to buffer.").
				Placeholder("30").
				Value(&channelBufferSize).
				Validate(validatePositiveInt),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.SampleRate = atoi(sampleRate)
	cfg.Recording.Channels = atoi(channels)
	cfg.Recording.Device = device
	cfg.Recording.BufferSize = atoi(bufferSize)
	cfg.Recording.ChannelBufferSize = atoi(channelBufferSize)
	return nil
}
