package events

// Menu topic names.
const (
	TopicCreateFolder         = "menu.createFolder"
	TopicOpenImportDialog     = "menu.openImportDialog"
	TopicFolderWithSetCreated = "menu.folderWithSetCreated"
	TopicOpenChangelog        = "menu.openChangelog"
	TopicLinkCopied           = "menu.linkCopied"
)

// Menu groups the topics the command palette and navbar fire to open dialogs
// owned by other components.
type Menu struct {
	// CreateFolder carries an optional study set id to file into the new folder.
	CreateFolder         *Topic[string]
	OpenImportDialog     *Topic[Signal]
	FolderWithSetCreated *Topic[string]
	OpenChangelog        *Topic[Signal]
	// LinkCopied carries the URL that was written to the clipboard.
	LinkCopied *Topic[string]
}

// NewMenu registers the menu topics on b.
func NewMenu(b *Bus) *Menu {
	return &Menu{
		CreateFolder:         Register[string](b, TopicCreateFolder),
		OpenImportDialog:     Register[Signal](b, TopicOpenImportDialog),
		FolderWithSetCreated: Register[string](b, TopicFolderWithSetCreated),
		OpenChangelog:        Register[Signal](b, TopicOpenChangelog),
		LinkCopied:           Register[string](b, TopicLinkCopied),
	}
}
