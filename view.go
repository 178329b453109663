package analyzer

// View is the rendering adapter the controller drives. Implementations are
// called from one goroutine at a time.
type View interface {
	ShowError(msg string)
	ClearError()

	// ShowLoading makes the progress indicator visible with an initial status.
	ShowLoading(status string)
	HideLoading()
	SetProgress(percent int, status string)

	ShowProfile(name, handle string)

	ClearTweets()
	ShowPlaceholder(msg string)
	AppendCard(card TweetCard)
	ShowResults()
	HideResults()

	SetSubmitEnabled(enabled bool)
}
