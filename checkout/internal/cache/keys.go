package cache

const (
	KeyStep       = "checkout:step:%s"
	KeyDraft      = "checkout:draft:%s"
	KeyProcessing = "checkout:processing:%s"
)
