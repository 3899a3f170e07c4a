package commands

const (
	_etc = "/usr/local/etc/grade-export"

	DEFAULT_RATING_CONFIG = _etc + "/rating.json"
)
