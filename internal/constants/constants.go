package constants

// 内容状态常量
const (
	ContentStatusDraft     = "DRAFT"
	ContentStatusReview    = "REVIEW"
	ContentStatusPublished = "PUBLISHED"
	ContentStatusArchived  = "ARCHIVED"
)

// 内容类型常量
const (
	ContentTypeArticle      = "ARTICLE"
	ContentTypeCaseStudy    = "CASE_STUDY"
	ContentTypeBook         = "BOOK"
	ContentTypeBookChapter  = "BOOK_CHAPTER"
	ContentTypeTeachingNote = "TEACHING_NOTE"
	ContentTypeCollection   = "COLLECTION"
)

// Crossref 登记状态常量
const (
	CrossrefStatusNotRegistered = "not_registered"
	CrossrefStatusPending       = "pending"
	CrossrefStatusRegistered    = "registered"
	CrossrefStatusFailed        = "failed"
)

// 期刊状态常量
const (
	JournalStatusDraft     = "DRAFT"
	JournalStatusPublished = "PUBLISHED"
)

// 用户角色常量
const (
	UserRoleAdmin  = "ADMIN"
	UserRoleAuthor = "AUTHOR"
	UserRoleReader = "READER"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 审核队列条目类型常量
const (
	ReviewItemContent = "content"
	ReviewItemJournal = "journal"
	ReviewItemUser    = "user"
)

// 状态流转策略常量
const (
	TransitionPolicyStrict     = "strict"
	TransitionPolicyPermissive = "permissive"
)

// 状态流转动作常量
const (
	TransitionActionSubmit    = "submit"
	TransitionActionApprove   = "approve"
	TransitionActionReject    = "reject"
	TransitionActionArchive   = "archive"
	TransitionActionRestore   = "restore"
	TransitionActionUnchanged = "unchanged"
	TransitionActionOverride  = "override"
)

// 内容列表排序常量，缺省按最新排序
const (
	ContentSortOldest  = "oldest"
	ContentSortPopular = "popular"
	ContentSortTitle   = "title"
)

// 存储后端常量
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// 队列任务常量
const (
	TaskContentStatusEmail = "content:status_email"
)

// 队列名称常量
const (
	QueueDefault = "default"
)
