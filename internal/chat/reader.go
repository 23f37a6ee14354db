package chat

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// ReadCompound parses a chat-compound JSON document already sliced to
// its exact bounds by the caller (the game wraps chat JSON in a
// VarInt32-length-prefixed string at the packet level).
//
// The source drives this with an explicit stack of parse contexts
// pushed and popped around each JSON object or array; json-iterator's
// low-level Iterator is pull-based, so the stack becomes ordinary Go
// call-stack recursion instead: reading an "extra" array, a "score"
// object or a hover/click event object is just another function call
// whose return unwinds back to the enclosing compound.

// maxChatBytes is the length cap protocol-embedded chat messages are
// held to.
const maxChatBytes = 32767

func ReadCompound(data []byte) (*Compound, error) {
	if len(data) > maxChatBytes {
		return nil, errors.WithStack(ErrTooLarge)
	}
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, errors.WithStack(ErrMalformedChat)
	}
	compound := &Compound{}
	if err := readChatCompound(iter, compound); err != nil {
		return nil, err
	}
	if iter.Error != nil {
		return nil, &ChatParseError{Offset: -1, Reason: iter.Error.Error()}
	}
	return compound, nil
}

func readChatCompound(iter *jsoniter.Iterator, compound *Compound) error {
	var cbErr error
	iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
		if err := dispatchKey(iter, compound, key); err != nil {
			cbErr = err
			return false
		}
		return true
	})
	return cbErr
}

func dispatchKey(iter *jsoniter.Iterator, compound *Compound, key string) error {
	switch key {
	case "bold", "italic", "underlined", "strikethrough", "obfuscated":
		if iter.WhatIsNext() != jsoniter.BoolValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		d := decorationOf(iter.ReadBool())
		switch key {
		case "bold":
			compound.Bold = d
		case "italic":
			compound.Italic = d
		case "underlined":
			compound.Underlined = d
		case "strikethrough":
			compound.Strikethrough = d
		case "obfuscated":
			compound.Obfuscated = d
		}
		return nil

	case "color":
		if iter.WhatIsNext() != jsoniter.StringValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		c, ok := LookupColor(iter.ReadString())
		if !ok {
			return errors.WithStack(ErrInvalidColor)
		}
		compound.HasColor, compound.Color = true, c
		return nil

	case "insertion":
		if iter.WhatIsNext() != jsoniter.StringValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		s := iter.ReadString()
		compound.Insertion = &s
		return nil

	case "text":
		if compound.Content.Kind != ContentNone {
			return errors.WithStack(ErrAmbiguousTrait)
		}
		if iter.WhatIsNext() != jsoniter.StringValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		compound.Content = Content{Kind: ContentText, Text: iter.ReadString()}
		return nil

	case "translate":
		if iter.WhatIsNext() != jsoniter.StringValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		s := iter.ReadString()
		switch compound.Content.Kind {
		case ContentNone:
			compound.Content = Content{Kind: ContentTranslate, TranslateKey: s}
		case ContentTranslate:
			compound.Content.TranslateKey = s
		default:
			return errors.WithStack(ErrAmbiguousTrait)
		}
		return nil

	case "with":
		switch compound.Content.Kind {
		case ContentNone:
			compound.Content = Content{Kind: ContentTranslate}
		case ContentTranslate:
		default:
			return errors.WithStack(ErrAmbiguousTrait)
		}
		if iter.WhatIsNext() != jsoniter.ArrayValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		for iter.ReadArray() {
			if iter.WhatIsNext() != jsoniter.StringValue {
				iter.Skip()
				return errors.WithStack(ErrUnexpectedValueType)
			}
			compound.Content.With = append(compound.Content.With, iter.ReadString())
		}
		return nil

	case "keybind":
		if compound.Content.Kind != ContentNone {
			return errors.WithStack(ErrAmbiguousTrait)
		}
		if iter.WhatIsNext() != jsoniter.StringValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		s := iter.ReadString()
		if !LookupKeybind(s) {
			return errors.WithStack(ErrInvalidKeybind)
		}
		compound.Content = Content{Kind: ContentKeybind, KeybindKey: s}
		return nil

	case "score":
		if compound.Content.Kind != ContentNone {
			return errors.WithStack(ErrAmbiguousTrait)
		}
		if iter.WhatIsNext() != jsoniter.ObjectValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		compound.Content = Content{Kind: ContentScore}
		return readScore(iter, compound)

	case "hoverEvent":
		if iter.WhatIsNext() != jsoniter.ObjectValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		ev, err := readHoverEvent(iter)
		if err != nil {
			return err
		}
		compound.HoverEvent = ev
		return nil

	case "clickEvent":
		if iter.WhatIsNext() != jsoniter.ObjectValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		ev, err := readClickEvent(iter)
		if err != nil {
			return err
		}
		compound.ClickEvent = ev
		return nil

	case "extra":
		if iter.WhatIsNext() != jsoniter.ArrayValue {
			iter.Skip()
			return errors.WithStack(ErrUnexpectedValueType)
		}
		for iter.ReadArray() {
			if iter.WhatIsNext() != jsoniter.ObjectValue {
				iter.Skip()
				return errors.WithStack(ErrUnexpectedValueType)
			}
			child := &Compound{}
			child.InheritStyle(compound)
			if err := readChatCompound(iter, child); err != nil {
				return err
			}
			compound.Extra = append(compound.Extra, child)
		}
		return nil

	default:
		iter.Skip()
		return errors.WithStack(ErrUnknownKey)
	}
}

func readScore(iter *jsoniter.Iterator, compound *Compound) error {
	var cbErr error
	iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
		if iter.WhatIsNext() != jsoniter.StringValue {
			iter.Skip()
			cbErr = errors.WithStack(ErrUnexpectedValueType)
			return false
		}
		switch key {
		case "name":
			compound.Content.ScoreName = iter.ReadString()
		case "objective":
			compound.Content.ScoreObjective = iter.ReadString()
		default:
			iter.Skip()
			cbErr = errors.WithStack(ErrUnknownKey)
			return false
		}
		return true
	})
	return cbErr
}

func readHoverEvent(iter *jsoniter.Iterator) (HoverEvent, error) {
	var action string
	var hasAction, hasValueStr, hasValueInt bool
	var valueStr string
	var valueInt int64
	var cbErr error

	iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
		switch key {
		case "action":
			if hasAction {
				cbErr = errors.WithStack(ErrDuplicateAction)
				return false
			}
			if iter.WhatIsNext() != jsoniter.StringValue {
				iter.Skip()
				cbErr = errors.WithStack(ErrUnexpectedValueType)
				return false
			}
			action, hasAction = iter.ReadString(), true
		case "value":
			if hasValueStr || hasValueInt {
				cbErr = errors.WithStack(ErrDuplicateValue)
				return false
			}
			switch iter.WhatIsNext() {
			case jsoniter.StringValue:
				valueStr, hasValueStr = iter.ReadString(), true
			case jsoniter.NumberValue:
				valueInt, hasValueInt = iter.ReadInt64(), true
			default:
				iter.Skip()
				cbErr = errors.WithStack(ErrUnexpectedValueType)
				return false
			}
		default:
			iter.Skip()
			cbErr = errors.WithStack(ErrUnknownKey)
			return false
		}
		return true
	})
	if cbErr != nil {
		return HoverEvent{}, cbErr
	}
	if !hasAction {
		return HoverEvent{}, errors.WithStack(ErrMalformedChat)
	}
	_ = valueInt
	switch action {
	case "show_text":
		if !hasValueStr {
			return HoverEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return HoverEvent{Kind: HoverShowText, Text: valueStr}, nil
	case "show_item":
		if !hasValueStr {
			return HoverEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return HoverEvent{Kind: HoverShowItem, Item: valueStr}, nil
	case "show_entity":
		if !hasValueStr {
			return HoverEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return HoverEvent{Kind: HoverShowEntity, Entity: valueStr}, nil
	case "show_achievement":
		if !hasValueStr {
			return HoverEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return HoverEvent{Kind: HoverShowAchievement, Achievement: valueStr}, nil
	default:
		return HoverEvent{}, errors.WithStack(ErrMalformedChat)
	}
}

func readClickEvent(iter *jsoniter.Iterator) (ClickEvent, error) {
	var action string
	var hasAction, hasValueStr, hasValueInt bool
	var valueStr string
	var valueInt int64
	var cbErr error

	iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
		switch key {
		case "action":
			if hasAction {
				cbErr = errors.WithStack(ErrDuplicateAction)
				return false
			}
			if iter.WhatIsNext() != jsoniter.StringValue {
				iter.Skip()
				cbErr = errors.WithStack(ErrUnexpectedValueType)
				return false
			}
			action, hasAction = iter.ReadString(), true
		case "value":
			if hasValueStr || hasValueInt {
				cbErr = errors.WithStack(ErrDuplicateValue)
				return false
			}
			switch iter.WhatIsNext() {
			case jsoniter.StringValue:
				valueStr, hasValueStr = iter.ReadString(), true
			case jsoniter.NumberValue:
				valueInt, hasValueInt = iter.ReadInt64(), true
			default:
				iter.Skip()
				cbErr = errors.WithStack(ErrUnexpectedValueType)
				return false
			}
		default:
			iter.Skip()
			cbErr = errors.WithStack(ErrUnknownKey)
			return false
		}
		return true
	})
	if cbErr != nil {
		return ClickEvent{}, cbErr
	}
	if !hasAction {
		return ClickEvent{}, errors.WithStack(ErrMalformedChat)
	}
	switch action {
	case "open_url":
		if !hasValueStr {
			return ClickEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return ClickEvent{Kind: ClickOpenURL, URL: valueStr}, nil
	case "run_command":
		if !hasValueStr {
			return ClickEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return ClickEvent{Kind: ClickRunCommand, Command: valueStr}, nil
	case "suggest_command":
		if !hasValueStr {
			return ClickEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return ClickEvent{Kind: ClickSuggestCommand, Command: valueStr}, nil
	case "change_page":
		if !hasValueInt {
			return ClickEvent{}, errors.WithStack(ErrInvalidValueType)
		}
		return ClickEvent{Kind: ClickChangePage, PageNo: valueInt}, nil
	default:
		return ClickEvent{}, errors.WithStack(ErrMalformedChat)
	}
}
