package spark

// User ids travel as decimal strings, timestamps as unix milliseconds.

// ---- MatchService ----

type SubmitSwipeRequest struct {
	ActorUserId  string `json:"actor_user_id"`
	TargetUserId string `json:"target_user_id"`
	// Action is "like" or "pass".
	Action string `json:"action"`
}

func (x *SubmitSwipeRequest) GetActorUserId() string {
	if x != nil {
		return x.ActorUserId
	}
	return ""
}

func (x *SubmitSwipeRequest) GetTargetUserId() string {
	if x != nil {
		return x.TargetUserId
	}
	return ""
}

func (x *SubmitSwipeRequest) GetAction() string {
	if x != nil {
		return x.Action
	}
	return ""
}

// SubmitSwipeResponse.Outcome is "recorded", "matched" or "already_matched".
type SubmitSwipeResponse struct {
	Outcome string `json:"outcome"`
	Match   *Match `json:"match,omitempty"`
}

type SendCrushRequest struct {
	ActorUserId  string `json:"actor_user_id"`
	TargetUserId string `json:"target_user_id"`
}

func (x *SendCrushRequest) GetActorUserId() string {
	if x != nil {
		return x.ActorUserId
	}
	return ""
}

func (x *SendCrushRequest) GetTargetUserId() string {
	if x != nil {
		return x.TargetUserId
	}
	return ""
}

type SendCrushResponse struct {
	Outcome string `json:"outcome"`
	Match   *Match `json:"match,omitempty"`
	Balance int64  `json:"balance"`
}

type Match struct {
	MatchId            uint64 `json:"match_id"`
	UserLowId          string `json:"user_low_id"`
	UserHighId         string `json:"user_high_id"`
	ConversationId     uint64 `json:"conversation_id"`
	CreatedAtUnixMilli int64  `json:"created_at_unix_milli"`
}

type ListLikedYouRequest struct {
	RecipientUserId string  `json:"recipient_user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int32   `json:"limit,omitempty"`
}

func (x *ListLikedYouRequest) GetRecipientUserId() string {
	if x != nil {
		return x.RecipientUserId
	}
	return ""
}

func (x *ListLikedYouRequest) GetPaginationToken() string {
	if x != nil && x.PaginationToken != nil {
		return *x.PaginationToken
	}
	return ""
}

func (x *ListLikedYouRequest) GetLimit() int32 {
	if x != nil {
		return x.Limit
	}
	return 0
}

type ListLikedYouResponse struct {
	Likers              []*ListLikedYouResponse_Liker `json:"likers"`
	NextPaginationToken *string                       `json:"next_pagination_token,omitempty"`
}

func (x *ListLikedYouResponse) GetNextPaginationToken() string {
	if x != nil && x.NextPaginationToken != nil {
		return *x.NextPaginationToken
	}
	return ""
}

type ListLikedYouResponse_Liker struct {
	ActorId          string `json:"actor_id"`
	LikedAtUnixMilli uint64 `json:"liked_at_unix_milli"`
}

type CountLikedYouRequest struct {
	RecipientUserId string `json:"recipient_user_id"`
}

func (x *CountLikedYouRequest) GetRecipientUserId() string {
	if x != nil {
		return x.RecipientUserId
	}
	return ""
}

type CountLikedYouResponse struct {
	Count uint64 `json:"count"`
}

type ListMatchesRequest struct {
	UserId string `json:"user_id"`
}

func (x *ListMatchesRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type ListMatchesResponse struct {
	Matches []*Match `json:"matches"`
}

// ---- ChatService ----

type Conversation struct {
	Id                     uint64 `json:"id"`
	Kind                   string `json:"kind"`
	UserLowId              string `json:"user_low_id"`
	UserHighId             string `json:"user_high_id"`
	LastSeq                int64  `json:"last_seq"`
	LastMessageAtUnixMilli int64  `json:"last_message_at_unix_milli,omitempty"`
}

type Message struct {
	Id                 string `json:"id"`
	ConversationId     uint64 `json:"conversation_id"`
	Seq                int64  `json:"seq"`
	SenderUserId       string `json:"sender_user_id"`
	Body               string `json:"body,omitempty"`
	MediaRef           string `json:"media_ref,omitempty"`
	ClientRef          string `json:"client_ref,omitempty"`
	WasFree            bool   `json:"was_free"`
	PointsCharged      int64  `json:"points_charged"`
	CreatedAtUnixMilli int64  `json:"created_at_unix_milli"`
}

type OpenConversationRequest struct {
	UserId     string `json:"user_id"`
	PeerUserId string `json:"peer_user_id"`
	// Kind is "match" or "intro".
	Kind string `json:"kind"`
}

func (x *OpenConversationRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *OpenConversationRequest) GetPeerUserId() string {
	if x != nil {
		return x.PeerUserId
	}
	return ""
}

func (x *OpenConversationRequest) GetKind() string {
	if x != nil {
		return x.Kind
	}
	return ""
}

type OpenConversationResponse struct {
	Conversation *Conversation `json:"conversation"`
	Created      bool          `json:"created"`
}

type SendMessageRequest struct {
	ConversationId uint64 `json:"conversation_id"`
	SenderUserId   string `json:"sender_user_id"`
	Body           string `json:"body,omitempty"`
	MediaRef       string `json:"media_ref,omitempty"`
	ClientRef      string `json:"client_ref,omitempty"`
}

func (x *SendMessageRequest) GetConversationId() uint64 {
	if x != nil {
		return x.ConversationId
	}
	return 0
}

func (x *SendMessageRequest) GetSenderUserId() string {
	if x != nil {
		return x.SenderUserId
	}
	return ""
}

// SendMessageResponse.FreeRemaining is -1 for unmetered conversations.
type SendMessageResponse struct {
	Message       *Message `json:"message"`
	WasFree       bool     `json:"was_free"`
	FreeRemaining int32    `json:"free_remaining"`
	Balance       *int64   `json:"balance,omitempty"`
}

type ListMessagesRequest struct {
	ConversationId uint64 `json:"conversation_id"`
	ViewerUserId   string `json:"viewer_user_id"`
	AfterSeq       int64  `json:"after_seq,omitempty"`
	Limit          int32  `json:"limit,omitempty"`
}

func (x *ListMessagesRequest) GetViewerUserId() string {
	if x != nil {
		return x.ViewerUserId
	}
	return ""
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type MarkReadRequest struct {
	ConversationId uint64 `json:"conversation_id"`
	UserId         string `json:"user_id"`
	Seq            int64  `json:"seq"`
}

func (x *MarkReadRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type MarkReadResponse struct {
	ReadSeq int64 `json:"read_seq"`
}

type ListConversationsRequest struct {
	UserId string `json:"user_id"`
}

func (x *ListConversationsRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type ConversationSummary struct {
	Conversation *Conversation `json:"conversation"`
	PeerUserId   string        `json:"peer_user_id"`
	LastMessage  *Message      `json:"last_message,omitempty"`
	ReadSeq      int64         `json:"read_seq"`
	Unread       int64         `json:"unread"`
}

type ListConversationsResponse struct {
	Conversations []*ConversationSummary `json:"conversations"`
}

type GetQuotaRequest struct {
	ConversationId uint64 `json:"conversation_id"`
	UserId         string `json:"user_id"`
}

func (x *GetQuotaRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

// GetQuotaResponse reports Limit and FreeRemaining as -1 when unmetered.
type GetQuotaResponse struct {
	Day           string `json:"day"`
	FreeUsed      int32  `json:"free_used"`
	Paid          int32  `json:"paid"`
	FreeRemaining int32  `json:"free_remaining"`
	Limit         int32  `json:"limit"`
}

type SubscribeConversationRequest struct {
	ConversationId uint64 `json:"conversation_id"`
	ViewerUserId   string `json:"viewer_user_id"`
	// SinceSeq replays stored messages after it before going live.
	SinceSeq *int64 `json:"since_seq,omitempty"`
}

func (x *SubscribeConversationRequest) GetViewerUserId() string {
	if x != nil {
		return x.ViewerUserId
	}
	return ""
}

type SubscribeInboxRequest struct {
	UserId string `json:"user_id"`
}

func (x *SubscribeInboxRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

// Event is streamed by SubscribeConversation (kind "message") and
// SubscribeInbox (kinds "summary" and "match").
type Event struct {
	Kind           string   `json:"kind"`
	ConversationId uint64   `json:"conversation_id,omitempty"`
	Seq            int64    `json:"seq,omitempty"`
	Replayed       bool     `json:"replayed,omitempty"`
	Message        *Message `json:"message,omitempty"`
	Summary        *Summary `json:"summary,omitempty"`
	Match          *Match   `json:"match,omitempty"`
}

type Summary struct {
	ConversationId         uint64 `json:"conversation_id"`
	Kind                   string `json:"kind"`
	LastSeq                int64  `json:"last_seq"`
	LastSenderUserId       string `json:"last_sender_user_id"`
	Preview                string `json:"preview"`
	LastMessageAtUnixMilli int64  `json:"last_message_at_unix_milli"`
}

// ---- WalletService ----

type GetBalanceRequest struct {
	UserId string `json:"user_id"`
}

func (x *GetBalanceRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type GetBalanceResponse struct {
	Balance     int64 `json:"balance"`
	TotalEarned int64 `json:"total_earned"`
	TotalSpent  int64 `json:"total_spent"`
}

type CreditRequest struct {
	UserId string `json:"user_id"`
	Amount int64  `json:"amount"`
	// Kind is "purchase", "refund" or "bonus".
	Kind       string `json:"kind"`
	Reason     string `json:"reason,omitempty"`
	PaymentRef string `json:"payment_ref,omitempty"`
}

func (x *CreditRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type PurchasePackageRequest struct {
	UserId     string `json:"user_id"`
	PackageId  string `json:"package_id"`
	PaymentRef string `json:"payment_ref"`
}

func (x *PurchasePackageRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type CreditResponse struct {
	Entry     *LedgerEntry `json:"entry"`
	Balance   int64        `json:"balance"`
	Duplicate bool         `json:"duplicate,omitempty"`
}

type LedgerEntry struct {
	Id                 string `json:"id"`
	Delta              int64  `json:"delta"`
	Kind               string `json:"kind"`
	Reason             string `json:"reason"`
	ConversationId     uint64 `json:"conversation_id,omitempty"`
	PaymentRef         string `json:"payment_ref,omitempty"`
	CreatedAtUnixMilli int64  `json:"created_at_unix_milli"`
}

type ListEntriesRequest struct {
	UserId          string  `json:"user_id"`
	PaginationToken *string `json:"pagination_token,omitempty"`
	Limit           int32   `json:"limit,omitempty"`
}

func (x *ListEntriesRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

type ListEntriesResponse struct {
	Entries             []*LedgerEntry `json:"entries"`
	NextPaginationToken *string        `json:"next_pagination_token,omitempty"`
}
