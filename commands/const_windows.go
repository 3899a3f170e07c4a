package commands

const (
	_etc = `C:\ProgramData\grade-export`

	DEFAULT_RATING_CONFIG = _etc + `\rating.json`
)
